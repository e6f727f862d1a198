package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/prompts"
)

// Fixed sampling configuration for scene inference. These are deliberate
// compile-time constants, not user settings: extraction stays predictable
// across deployments.
const (
	samplingTemperature      = 0.3
	samplingTopP             = 0.9
	samplingFrequencyPenalty = 0.2
	samplingPresencePenalty  = 0.0
	samplingMaxTokens        = 400
)

// Turn is one conversation message read from the host chat application.
type Turn struct {
	Speaker   string
	Text      string
	Automated bool
}

// TranscriptSource is the host collaborator contract for reading recent
// conversation turns.
type TranscriptSource interface {
	RecentTurns(n int) []Turn
}

// DescriberConfig holds the text-generation backend settings.
type DescriberConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

// SceneDescriber sends conversation text to a chat-completion backend
// with fixed instruction prompts and returns the raw model output.
type SceneDescriber struct {
	client   *resty.Client
	model    string
	endpoint string
}

// NewSceneDescriber creates a describer. Fails with a ConfigurationError
// when the endpoint or model is unset.
func NewSceneDescriber(cfg *DescriberConfig) (*SceneDescriber, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, &domain.ConfigurationError{Setting: "llm.base_url"}
	}
	if cfg.Model == "" {
		return nil, &domain.ConfigurationError{Setting: "llm.model"}
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	client.SetTimeout(60 * time.Second)

	return &SceneDescriber{
		client:   client,
		model:    cfg.Model,
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
	}, nil
}

type llmRequest struct {
	Model            string       `json:"model"`
	Messages         []llmMessage `json:"messages"`
	MaxTokens        int          `json:"max_tokens"`
	Temperature      float64      `json:"temperature"`
	TopP             float64      `json:"top_p"`
	FrequencyPenalty float64      `json:"frequency_penalty"`
	PresencePenalty  float64      `json:"presence_penalty"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// DescribeScene runs the first pass of two-pass extraction: a structured
// natural-language reading of the conversation.
func (s *SceneDescriber) DescribeScene(ctx context.Context, transcript []Turn) (string, error) {
	return s.complete(ctx, prompts.SceneSystemPrompt, FormatTranscript(transcript))
}

// DeriveTags runs the second pass: the pass-one description constrained
// to a flat tag list.
func (s *SceneDescriber) DeriveTags(ctx context.Context, description string) (string, error) {
	return s.complete(ctx, prompts.TagSystemPrompt, description)
}

// DescribeTagsDirect runs single-pass extraction: the flat tag list
// straight from the conversation.
func (s *SceneDescriber) DescribeTagsDirect(ctx context.Context, transcript []Turn) (string, error) {
	return s.complete(ctx, prompts.SinglePassSystemPrompt, FormatTranscript(transcript))
}

func (s *SceneDescriber) complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	req := llmRequest{
		Model: s.model,
		Messages: []llmMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		MaxTokens:        samplingMaxTokens,
		Temperature:      samplingTemperature,
		TopP:             samplingTopP,
		FrequencyPenalty: samplingFrequencyPenalty,
		PresencePenalty:  samplingPresencePenalty,
	}

	var resp llmResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		body := string(httpResp.Body())
		if resp.Error != nil {
			body = resp.Error.Message
		}
		return "", &domain.BackendError{Backend: "llm", Status: httpResp.StatusCode(), Body: body}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &domain.BackendError{
			Backend: "llm",
			Status:  httpResp.StatusCode(),
			Body:    "no choices in response",
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// FormatTranscript renders turns as speaker-labeled lines, the shape the
// scene prompts expect.
func FormatTranscript(transcript []Turn) string {
	var b strings.Builder
	for _, turn := range transcript {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		b.WriteString(turn.Speaker)
		b.WriteString(": ")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
