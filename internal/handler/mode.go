package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/pingpong-stats-service/internal/service"
	"github.com/avolkov/pingpong-stats-service/pkg/response"
)

type ModeHandler struct {
	svc service.ModeService
}

func NewModeHandler(svc service.ModeService) *ModeHandler { return &ModeHandler{svc: svc} }

func (h *ModeHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/modes")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.getByID)
	}
}

type createModeRequest struct {
	Name               string `json:"name"`
	PointsToWin        int    `json:"points_to_win"`
	ServesBeforeChange int    `json:"serves_before_change"`
	RulesDescription   string `json:"rules_description"`
	DeuceEnabled       bool   `json:"deuce_enabled"`
	ServesInDeuce      int    `json:"serves_in_deuce"`
	ServeType          string `json:"serve_type"`
}

func (h *ModeHandler) create(c *gin.Context) {
	var req createModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	mode, err := h.svc.CreateMode(c.Request.Context(), service.CreateModeInput{
		Name:               req.Name,
		PointsToWin:        req.PointsToWin,
		ServesBeforeChange: req.ServesBeforeChange,
		RulesDescription:   req.RulesDescription,
		DeuceEnabled:       req.DeuceEnabled,
		ServesInDeuce:      req.ServesInDeuce,
		ServeType:          req.ServeType,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, mode)
}

func (h *ModeHandler) list(c *gin.Context) {
	modes, err := h.svc.ListModes(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, modes)
}

func (h *ModeHandler) getByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mode, err := h.svc.GetMode(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, mode)
}
