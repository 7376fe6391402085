// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the only behavior here is seat
// arithmetic on Match, which finalize and stats must share one definition of.
package model

import (
	"time"

	"github.com/avolkov/pingpong-stats-service/internal/scoring"
)

// Player represents a participant identity with cumulative counters.
// Counters are mutated only at match finalize and its undo.
type Player struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Nickname      string    `json:"nickname,omitempty"`
	Color         string    `json:"color,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	Wins          int64     `json:"wins"`
	MatchesPlayed int64     `json:"matches_played"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GameMode is a ruleset template matches are created from.
type GameMode struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	PointsToWin        int       `json:"points_to_win"`
	ServesBeforeChange int       `json:"serves_before_change"`
	RulesDescription   string    `json:"rules_description,omitempty"`
	DeuceEnabled       bool      `json:"deuce_enabled"`
	ServesInDeuce      int       `json:"serves_in_deuce"`
	ServeType          string    `json:"serve_type"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Match statuses. Finished is terminal but reversible via undo of the last
// event; abandoned is terminal with no undo path.
const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
	StatusAbandoned  = "abandoned"
)

// Match is one scoring session. Side A is seats 1 and 3, side B is seats 2
// and 4; seats 3 and 4 are doubles partners and may be absent. The match
// exclusively owns its event log and rules.
type Match struct {
	ID         int64            `json:"id"`
	Player1ID  int64            `json:"player1_id"`
	Player2ID  int64            `json:"player2_id"`
	Player3ID  *int64           `json:"player3_id,omitempty"`
	Player4ID  *int64           `json:"player4_id,omitempty"`
	GameModeID int64            `json:"game_mode_id"`
	Status     string           `json:"status"`
	ScoreA     int              `json:"score_a"`
	ScoreB     int              `json:"score_b"`
	Events     scoring.EventLog `json:"events"`
	Rules      scoring.Rules    `json:"rules"`
	WinnerID   *int64           `json:"winner_id,omitempty"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
}

// SideOf reports which side the given player is seated on. The second return
// value is false when the player holds no seat in this match.
func (m *Match) SideOf(playerID int64) (scoring.Side, bool) {
	if playerID == m.Player1ID || (m.Player3ID != nil && *m.Player3ID == playerID) {
		return scoring.SideA, true
	}
	if playerID == m.Player2ID || (m.Player4ID != nil && *m.Player4ID == playerID) {
		return scoring.SideB, true
	}
	return "", false
}

// CaptainOf returns the primary seat of a side: the id recorded as the
// match's winner or loser of record.
func (m *Match) CaptainOf(side scoring.Side) int64 {
	if side == scoring.SideA {
		return m.Player1ID
	}
	return m.Player2ID
}

// PartnerOf returns the partner seat of a side, nil in singles.
func (m *Match) PartnerOf(side scoring.Side) *int64 {
	if side == scoring.SideA {
		return m.Player3ID
	}
	return m.Player4ID
}

// Score returns the current score as a snapshot.
func (m *Match) Score() scoring.Snapshot {
	return scoring.Snapshot{A: m.ScoreA, B: m.ScoreB}
}

// MatchDetail is the populated read model: a match with its referenced rows
// resolved. It is assembled per request and never persisted.
type MatchDetail struct {
	ID          int64            `json:"id"`
	Player1     Player           `json:"player1"`
	Player2     Player           `json:"player2"`
	Player3     *Player          `json:"player3,omitempty"`
	Player4     *Player          `json:"player4,omitempty"`
	GameMode    GameMode         `json:"game_mode"`
	Status      string           `json:"status"`
	Score       scoring.Snapshot `json:"score"`
	Events      []scoring.Event  `json:"events"`
	Rules       scoring.Rules    `json:"rules"`
	Winner      *Player          `json:"winner,omitempty"`
	FirstServer *int64           `json:"first_server,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     *time.Time       `json:"end_time,omitempty"`
}

// PlayerStatistics is the derived, read-only statistics view for one player.
type PlayerStatistics struct {
	PlayerID       int64         `json:"player_id"`
	Wins           int           `json:"wins"`
	Losses         int           `json:"losses"`
	MatchesPlayed  int           `json:"matches_played"`
	WinRate        float64       `json:"win_rate"`
	CurrentStreak  int           `json:"current_streak"`
	BestStreak     int           `json:"best_streak"`
	PointsScored   int           `json:"points_scored"`
	PointsConceded int           `json:"points_conceded"`
	ModeStats      []ModeStat    `json:"mode_stats"`
	RecentMatches  []RecentMatch `json:"recent_matches"`
	Nemesis        *OpponentStat `json:"nemesis,omitempty"`
	Victim         *OpponentStat `json:"victim,omitempty"`
}

// ModeStat is a player's record within one game mode.
type ModeStat struct {
	ModeName string  `json:"mode_name"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinRate  float64 `json:"win_rate"`
}

// OpponentStat counts results against one opposing captain.
type OpponentStat struct {
	OpponentID   int64  `json:"opponent_id"`
	OpponentName string `json:"opponent_name"`
	Count        int    `json:"count"`
}

// RecentMatch is one row of a player's recent-match history.
type RecentMatch struct {
	MatchID       int64  `json:"match_id"`
	Date          string `json:"date"` // RFC 3339
	OpponentName  string `json:"opponent_name"`
	Result        string `json:"result"` // "Win" or "Loss"
	ScoreUser     int    `json:"score_user"`
	ScoreOpponent int    `json:"score_opponent"`
	ModeName      string `json:"mode_name"`
}

// KeyBinding maps an input action to a physical key for the scoreboard UI.
type KeyBinding struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	KeyCode   string `json:"key_code"`
	Label     string `json:"label"`
	IsDefault bool   `json:"is_default"`
}
