package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/pingpong-stats-service/internal/service"
	"github.com/avolkov/pingpong-stats-service/pkg/response"
)

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches")
	{
		g.POST("", h.start)
		g.GET("/:id", h.getByID)
		g.POST("/:id/points", h.addPoint)
		g.DELETE("/:id/points/last", h.undoLastPoint)
		g.PUT("/:id/first-server", h.setFirstServer)
		g.POST("/:id/cancel", h.cancel)
	}
}

type startMatchRequest struct {
	Player1ID     int64   `json:"player1_id"`
	Player2ID     int64   `json:"player2_id"`
	Player3ID     *int64  `json:"player3_id"`
	Player4ID     *int64  `json:"player4_id"`
	GameModeID    int64   `json:"game_mode_id"`
	ServesInDeuce *int    `json:"serves_in_deuce"`
	ServeType     *string `json:"serve_type"`
}

func (h *MatchHandler) start(c *gin.Context) {
	var req startMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	match, err := h.svc.StartMatch(c.Request.Context(), service.StartMatchInput{
		Player1ID:     req.Player1ID,
		Player2ID:     req.Player2ID,
		Player3ID:     req.Player3ID,
		Player4ID:     req.Player4ID,
		GameModeID:    req.GameModeID,
		ServesInDeuce: req.ServesInDeuce,
		ServeType:     req.ServeType,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, match)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	match, err := h.svc.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

type addPointRequest struct {
	PlayerID int64 `json:"player_id"`
}

func (h *MatchHandler) addPoint(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req addPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	match, err := h.svc.AddPoint(c.Request.Context(), id, req.PlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

func (h *MatchHandler) undoLastPoint(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	match, err := h.svc.UndoLastPoint(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

type setFirstServerRequest struct {
	PlayerID int64 `json:"player_id"`
}

func (h *MatchHandler) setFirstServer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req setFirstServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	match, err := h.svc.SetFirstServer(c.Request.Context(), id, req.PlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

func (h *MatchHandler) cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.CancelMatch(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
