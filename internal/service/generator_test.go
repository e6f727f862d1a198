package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Shadota/VN-Background-Generator/internal/comfy"
	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/workflow"
)

func newIdleGenerator(t *testing.T, backend *comfy.Client) *Generator {
	t.Helper()
	return NewGenerator(nil, backend, workflow.DefaultTemplate(), nil, nil, &GeneratorConfig{})
}

func TestAcquireSingleFlight(t *testing.T) {
	g := newIdleGenerator(t, nil)

	if err := g.acquire(); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := g.acquire(); !errors.Is(err, domain.ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}
}

func TestAcquireCooldown(t *testing.T) {
	g := newIdleGenerator(t, nil)

	if err := g.acquire(); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	g.release()

	if err := g.acquire(); !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("expected ErrCooldownActive, got %v", err)
	}
}

func TestAcquireCooldownExpired(t *testing.T) {
	g := newIdleGenerator(t, nil)
	g.cooldown = time.Millisecond
	g.lastStart = time.Now().Add(-time.Second)

	if err := g.acquire(); err != nil {
		t.Fatalf("expected acquire to succeed after cooldown, got %v", err)
	}
}

// Both rejection paths must fire before any backend is contacted: the
// generator here has no backend at all, so reaching one would panic.
func TestGenerateRejectsBeforeBackendContact(t *testing.T) {
	t.Run("in flight", func(t *testing.T) {
		g := newIdleGenerator(t, nil)
		if err := g.acquire(); err != nil {
			t.Fatalf("setup acquire failed: %v", err)
		}

		_, err := g.Generate(context.Background(), nil)
		if !errors.Is(err, domain.ErrGenerationInFlight) {
			t.Fatalf("expected ErrGenerationInFlight, got %v", err)
		}
	})

	t.Run("cooldown", func(t *testing.T) {
		g := newIdleGenerator(t, nil)
		g.lastStart = time.Now()

		_, err := g.Generate(context.Background(), nil)
		if !errors.Is(err, domain.ErrCooldownActive) {
			t.Fatalf("expected ErrCooldownActive, got %v", err)
		}
	})
}

func TestGenerateBackendNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"CheckpointLoaderSimple": {"input": {"required": {"ckpt_name": [[], {}]}}}}`))
	}))
	t.Cleanup(srv.Close)

	backend, err := comfy.NewClient(&comfy.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create backend client: %v", err)
	}
	g := newIdleGenerator(t, backend)

	_, err = g.Generate(context.Background(), nil)
	if !errors.Is(err, domain.ErrBackendNotReady) {
		t.Fatalf("expected ErrBackendNotReady, got %v", err)
	}

	// The slot must be free again so a later retry is not stuck behind a
	// job that never ran.
	g.mu.Lock()
	inFlight := g.inFlight
	g.mu.Unlock()
	if inFlight {
		t.Error("single-flight slot not released after readiness failure")
	}
}

func TestExtractArtifact(t *testing.T) {
	t.Run("first image in node id order", func(t *testing.T) {
		entry := &comfy.HistoryEntry{
			Outputs: map[string]comfy.NodeOutput{
				"9":  {Images: []comfy.ImageRef{{Filename: "late.png", Type: "output"}}},
				"15": {Images: []comfy.ImageRef{{Filename: "preview.png", Type: "temp"}}},
			},
		}
		artifact, err := extractArtifact(entry)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Lexicographic order over node ids: "15" sorts before "9".
		if artifact.Filename != "preview.png" {
			t.Errorf("filename = %q, want preview.png", artifact.Filename)
		}
	})

	t.Run("skips empty filenames", func(t *testing.T) {
		entry := &comfy.HistoryEntry{
			Outputs: map[string]comfy.NodeOutput{
				"1": {Images: []comfy.ImageRef{{Filename: ""}}},
				"2": {Images: []comfy.ImageRef{{Filename: "bg.png", Subfolder: "out", Type: "output"}}},
			},
		}
		artifact, err := extractArtifact(entry)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if artifact.Filename != "bg.png" || artifact.Subfolder != "out" || artifact.Kind != "output" {
			t.Errorf("unexpected artifact %+v", artifact)
		}
	})

	t.Run("no images", func(t *testing.T) {
		entry := &comfy.HistoryEntry{
			Outputs: map[string]comfy.NodeOutput{
				"9": {},
			},
		}
		_, err := extractArtifact(entry)
		if !errors.Is(err, domain.ErrNoOutputProduced) {
			t.Fatalf("expected ErrNoOutputProduced, got %v", err)
		}
	})
}

func TestGeneratorConfigDefaults(t *testing.T) {
	g := NewGenerator(nil, nil, nil, nil, nil, &GeneratorConfig{})
	if g.cooldown != 5*time.Second {
		t.Errorf("cooldown = %v, want 5s", g.cooldown)
	}
	if g.pollInterval != time.Second {
		t.Errorf("poll interval = %v, want 1s", g.pollInterval)
	}
	if g.pollTimeout != 5*time.Minute {
		t.Errorf("poll timeout = %v, want 5m", g.pollTimeout)
	}
}
