package handler

import (
	"context"
	"net/http"
	"time"

	"thingstodo/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable"})
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}
