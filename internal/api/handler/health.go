package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shadota/VN-Background-Generator/internal/comfy"
	"github.com/Shadota/VN-Background-Generator/internal/workflow"
)

// HealthHandler reports service liveness and rendering backend readiness.
type HealthHandler struct {
	backend *comfy.Client
}

func NewHealthHandler(backend *comfy.Client) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// Health handles GET /health. The backend probe mirrors the one done
// before each generation: a reachable backend with no checkpoints is
// "loading", not "ready".
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}

	if h.backend != nil {
		models, err := h.backend.ListOptions(c.Request.Context(), workflow.ClassCheckpointLoader, "ckpt_name")
		switch {
		case err != nil:
			resp["backend"] = "unreachable"
		case len(models) == 0:
			resp["backend"] = "loading"
		default:
			resp["backend"] = "ready"
		}
	}

	c.JSON(http.StatusOK, resp)
}
