package scoring

import "encoding/json"

// Default rule values applied when a match carries no stored rules or the
// stored document cannot be parsed.
const (
	DefaultServesInDeuce = 1
	DefaultServeType     = "free"
)

// Rules is the effective per-match rule set. It starts as a copy of the game
// mode's defaults and may carry per-match overrides; the match owns it.
type Rules struct {
	ServesInDeuce int    `json:"servesInDeuce"`
	ServeType     string `json:"serveType"`
	FirstServerID *int64 `json:"firstServerId"`
}

// DefaultRules returns the fallback rule set.
func DefaultRules() Rules {
	return Rules{ServesInDeuce: DefaultServesInDeuce, ServeType: DefaultServeType}
}

// DecodeRules parses a stored rules document, falling back to defaults when
// the document is absent or corrupt.
func DecodeRules(raw []byte) Rules {
	if len(raw) == 0 {
		return DefaultRules()
	}
	var r Rules
	if err := json.Unmarshal(raw, &r); err != nil {
		return DefaultRules()
	}
	return r
}

// EncodeRules serializes the rule set for storage.
func EncodeRules(r Rules) ([]byte, error) {
	return json.Marshal(r)
}
