// Package comfy wraps the rendering backend's HTTP API: node metadata
// probes, job submission, history polling, and artifact retrieval.
package comfy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/workflow"
)

// Config holds connection settings for the rendering backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin typed wrapper over the backend endpoints.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient creates a rendering backend client. Fails with a
// ConfigurationError when the base URL is unset.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, &domain.ConfigurationError{Setting: "comfy.base_url"}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

type submitRequest struct {
	Prompt   workflow.Graph `json:"prompt"`
	ClientID string         `json:"client_id,omitempty"`
}

type submitResponse struct {
	PromptID   string                     `json:"prompt_id"`
	Error      json.RawMessage            `json:"error,omitempty"`
	NodeErrors map[string]json.RawMessage `json:"node_errors,omitempty"`
}

// ImageRef is one image entry in a node's output list.
type ImageRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// NodeOutput is the per-node result block in a history entry.
type NodeOutput struct {
	Images []ImageRef `json:"images"`
}

// HistoryEntry is one finished (or in-progress) job in the history map.
type HistoryEntry struct {
	Outputs map[string]NodeOutput `json:"outputs"`
}

// ListOptions returns the enumerated valid values for one input of a node
// class, read from the object_info endpoint. An empty list means the
// backend has not finished loading that option set.
func (c *Client) ListOptions(ctx context.Context, class, input string) ([]string, error) {
	var payload map[string]struct {
		Input struct {
			Required map[string]json.RawMessage `json:"required"`
		} `json:"input"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(c.baseURL + "/object_info/" + class)
	if err != nil {
		return nil, fmt.Errorf("object_info request failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &domain.BackendError{Backend: "comfy", Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	info, ok := payload[class]
	if !ok {
		return nil, nil
	}
	raw, ok := info.Input.Required[input]
	if !ok {
		return nil, nil
	}

	// The wire shape is [[...values], {config}]; only the value list matters.
	var spec []json.RawMessage
	if err := json.Unmarshal(raw, &spec); err != nil || len(spec) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(spec[0], &values); err != nil {
		return nil, nil
	}
	return values, nil
}

// Submit posts an instantiated graph and returns the backend-assigned
// prompt id. Validation failures mentioning a value outside the loaded
// option lists become GenerationRejected with a remediation hint.
func (c *Client) Submit(ctx context.Context, g workflow.Graph, clientID string) (string, error) {
	var result submitResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(submitRequest{Prompt: g, ClientID: clientID}).
		SetResult(&result).
		SetError(&result).
		Post(c.baseURL + "/prompt")
	if err != nil {
		return "", fmt.Errorf("prompt submission failed: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		detail := string(resp.Body())
		if len(result.Error) > 0 {
			detail = string(result.Error)
		}
		if isStaleOptionError(detail) {
			return "", &domain.GenerationRejected{
				Detail: detail,
				Hint:   "a configured model, sampler, or LoRA is not loaded on the backend; check the generation settings against the backend's option lists",
			}
		}
		return "", &domain.BackendError{Backend: "comfy", Status: resp.StatusCode(), Body: detail}
	}

	if result.PromptID == "" {
		return "", &domain.GenerationRejected{Detail: "backend accepted the request but returned no prompt id"}
	}
	return result.PromptID, nil
}

// History fetches the history entry for a prompt id. The entry is nil
// while the job is still rendering.
func (c *Client) History(ctx context.Context, promptID string) (*HistoryEntry, error) {
	var payload map[string]HistoryEntry

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(c.baseURL + "/history/" + promptID)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &domain.BackendError{Backend: "comfy", Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	entry, ok := payload[promptID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// View downloads the raw bytes of a rendered artifact.
func (c *Client) View(ctx context.Context, artifact domain.Artifact) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"filename":  artifact.Filename,
			"subfolder": artifact.Subfolder,
			"type":      artifact.Kind,
		}).
		Get(c.baseURL + "/view")
	if err != nil {
		return nil, fmt.Errorf("artifact fetch failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &domain.BackendError{Backend: "comfy", Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return resp.Body(), nil
}

// ViewURL builds the direct URL at which the backend serves an artifact.
func (c *Client) ViewURL(artifact domain.Artifact) string {
	q := url.Values{}
	q.Set("filename", artifact.Filename)
	q.Set("subfolder", artifact.Subfolder)
	q.Set("type", artifact.Kind)
	return c.baseURL + "/view?" + q.Encode()
}

// isStaleOptionError matches the backend's "value not in list" class of
// validation error, which signals a stale or unloaded parameter rather
// than a malformed graph.
func isStaleOptionError(detail string) bool {
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "value not in list") ||
		strings.Contains(lower, "not in the list") ||
		strings.Contains(lower, "value_not_in_list")
}
