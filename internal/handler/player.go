package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/service"
	"github.com/avolkov/pingpong-stats-service/pkg/response"
)

const serviceTimeout = 5 * time.Second

// parseIDParam parses a positive int64 path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: name, Message: "must be a valid integer > 0"}}))
		return 0, false
	}
	return id, true
}

type PlayerHandler struct {
	svc     service.PlayerService
	stats   service.StatsService
	matches service.MatchService
}

func NewPlayerHandler(svc service.PlayerService, stats service.StatsService, matches service.MatchService) *PlayerHandler {
	return &PlayerHandler{svc: svc, stats: stats, matches: matches}
}

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.getByID)
		g.PUT("/:id", h.update)
		g.GET("/:id/statistics", h.getStatistics)
		g.GET("/:id/matches", h.listMatches)
	}
}

type createPlayerRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), req.Name, req.Nickname, req.Color, req.Icon)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

type updatePlayerRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *PlayerHandler) update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.UpdatePlayer(c.Request.Context(), id, req.Name, req.Color, req.Icon)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) list(c *gin.Context) {
	players, err := h.svc.ListPlayers(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, players)
}

func (h *PlayerHandler) listMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	// Atoi errors are ignored intentionally, as 0 is a valid default for limit/offset, handled by the service layer.
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	res, err := h.matches.ListPlayerMatches(c.Request.Context(), id, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// getStatistics serves the derived statistics view for one player.
func (h *PlayerHandler) getStatistics(c *gin.Context) {
	start := time.Now()
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()

	stats, err := h.stats.PlayerStatistics(ctx, id)

	logger := log.With().
		Str("path", c.Request.URL.Path).
		Int64("player_id", id).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		status, _ := response.MapError(err)
		logger.Error().Err(err).Int("status", status).Msg("failed to get player statistics")
		response.WriteError(c, err)
		return
	}

	logger.Info().Int("status", http.StatusOK).Msg("player statistics retrieved")
	response.WriteData(c, http.StatusOK, stats)
}
