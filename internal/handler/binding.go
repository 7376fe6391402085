package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/pingpong-stats-service/internal/service"
	"github.com/avolkov/pingpong-stats-service/pkg/response"
)

type BindingHandler struct {
	svc service.BindingService
}

func NewBindingHandler(svc service.BindingService) *BindingHandler { return &BindingHandler{svc: svc} }

func (h *BindingHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/key-bindings")
	{
		g.GET("", h.list)
		g.PUT("", h.set)
		g.DELETE("/:id", h.delete)
		g.POST("/reset", h.reset)
	}
}

func (h *BindingHandler) list(c *gin.Context) {
	bindings, err := h.svc.ListBindings(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, bindings)
}

type setBindingRequest struct {
	Action  string `json:"action"`
	KeyCode string `json:"key_code"`
	Label   string `json:"label"`
}

func (h *BindingHandler) set(c *gin.Context) {
	var req setBindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	binding, err := h.svc.SetBinding(c.Request.Context(), req.Action, req.KeyCode, req.Label)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, binding)
}

func (h *BindingHandler) delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBinding(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BindingHandler) reset(c *gin.Context) {
	bindings, err := h.svc.ResetBindings(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, bindings)
}
