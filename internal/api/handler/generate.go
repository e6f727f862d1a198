package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/service"
)

// GenerateHandler handles background generation requests.
type GenerateHandler struct {
	generator *service.Generator
}

func NewGenerateHandler(generator *service.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// GenerateRequest carries the recent conversation turns the scene is
// inferred from. Turns arrive oldest first.
type GenerateRequest struct {
	Messages []TurnPayload `json:"messages" binding:"required"`
}

type TurnPayload struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Automated bool   `json:"automated"`
}

// GenerateResponse describes a completed render.
type GenerateResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
	Filename string `json:"filename"`
}

// Generate handles POST /api/v1/generate. The call blocks until the
// render completes or fails; concurrent triggers are rejected.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least one message is required",
		})
		return
	}

	transcript := make([]service.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		transcript = append(transcript, service.Turn{
			Speaker:   m.Speaker,
			Text:      m.Text,
			Automated: m.Automated,
		})
	}

	result, err := h.generator.Generate(c.Request.Context(), transcript)
	if err != nil {
		status, body := generationErrorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		JobID:    result.Job.ID,
		Status:   string(result.Job.Status),
		Prompt:   result.Prompt,
		ImageURL: result.ImageURL,
		Filename: result.Artifact.Filename,
	})
}

// generationErrorResponse maps orchestrator errors onto HTTP statuses.
// Busy and cooldown are retryable client-side, readiness is a 503 so
// upstream proxies back off.
func generationErrorResponse(err error) (int, gin.H) {
	switch {
	case errors.Is(err, domain.ErrGenerationInFlight):
		return http.StatusConflict, gin.H{"error": "A generation is already running"}
	case errors.Is(err, domain.ErrCooldownActive):
		return http.StatusTooManyRequests, gin.H{"error": "Generation cooldown active, retry shortly"}
	case errors.Is(err, domain.ErrBackendNotReady):
		return http.StatusServiceUnavailable, gin.H{"error": "Rendering backend is still loading"}
	case errors.Is(err, domain.ErrNoOutputProduced):
		return http.StatusBadGateway, gin.H{"error": "Rendering backend produced no image"}
	}

	var rejected *domain.GenerationRejected
	if errors.As(err, &rejected) {
		body := gin.H{"error": "Workflow rejected: " + rejected.Detail}
		if rejected.Hint != "" {
			body["hint"] = rejected.Hint
		}
		return http.StatusUnprocessableEntity, body
	}

	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		return http.StatusBadGateway, gin.H{"error": backendErr.Error()}
	}

	var templateErr *domain.TemplateError
	if errors.As(err, &templateErr) {
		return http.StatusInternalServerError, gin.H{"error": templateErr.Error()}
	}

	return http.StatusInternalServerError, gin.H{"error": "Generation failed: " + err.Error()}
}
