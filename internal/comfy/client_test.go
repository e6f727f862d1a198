package comfy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/workflow"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c, srv
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(&Config{})
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestListOptions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/object_info/CheckpointLoaderSimple" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"CheckpointLoaderSimple": {
				"input": {
					"required": {
						"ckpt_name": [["model_a.safetensors", "model_b.safetensors"], {"tooltip": "checkpoint"}]
					}
				}
			}
		}`))
	})

	got, err := c.ListOptions(context.Background(), "CheckpointLoaderSimple", "ckpt_name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"model_a.safetensors", "model_b.safetensors"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListOptions = %v, want %v", got, want)
	}
}

func TestListOptionsEmptyWhileLoading(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"CheckpointLoaderSimple": {"input": {"required": {"ckpt_name": [[], {}]}}}}`))
	})

	got, err := c.ListOptions(context.Background(), "CheckpointLoaderSimple", "ckpt_name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty option list, got %v", got)
	}
}

func TestListOptionsBackendError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.ListOptions(context.Background(), "CheckpointLoaderSimple", "ckpt_name")
	var backendErr *domain.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", backendErr.Status)
	}
}

func testGraph() workflow.Graph {
	return workflow.Graph{
		"1": {ClassType: "TestNode", Inputs: map[string]interface{}{"v": 1}},
	}
}

func TestSubmit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prompt" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prompt_id": "abc-123"}`))
	})

	id, err := c.Submit(context.Background(), testGraph(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "abc-123" {
		t.Errorf("prompt id = %q, want abc-123", id)
	}
}

func TestSubmitStaleOptionRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "prompt_outputs_failed_validation", "message": "Value not in list: ckpt_name: 'old.safetensors'"}}`))
	})

	_, err := c.Submit(context.Background(), testGraph(), "client-1")
	var rejected *domain.GenerationRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected GenerationRejected, got %v", err)
	}
	if rejected.Hint == "" {
		t.Error("expected remediation hint for stale option error")
	}
}

func TestSubmitGenericBackendError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := c.Submit(context.Background(), testGraph(), "client-1")
	var backendErr *domain.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestSubmitMissingPromptID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	_, err := c.Submit(context.Background(), testGraph(), "client-1")
	var rejected *domain.GenerationRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected GenerationRejected, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	t.Run("still rendering", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		})
		entry, err := c.History(context.Background(), "abc-123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Errorf("expected nil entry while rendering, got %+v", entry)
		}
	})

	t.Run("completed with outputs", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/history/abc-123" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"abc-123": {
					"outputs": {
						"9": {"images": [{"filename": "vn_background_00001_.png", "subfolder": "", "type": "output"}]}
					}
				}
			}`))
		})
		entry, err := c.History(context.Background(), "abc-123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry == nil {
			t.Fatal("expected entry")
		}
		images := entry.Outputs["9"].Images
		if len(images) != 1 || images[0].Filename != "vn_background_00001_.png" {
			t.Errorf("unexpected outputs: %+v", entry.Outputs)
		}
	})
}

func TestViewURL(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	got := c.ViewURL(domain.Artifact{Filename: "bg.png", Subfolder: "sub dir", Kind: "output"})
	want := srv.URL + "/view?filename=bg.png&subfolder=sub+dir&type=output"
	if got != want {
		t.Errorf("ViewURL = %q, want %q", got, want)
	}
}

func TestView(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filename") != "bg.png" {
			t.Errorf("missing filename query, got %v", r.URL.Query())
		}
		w.Write(payload)
	})

	got, err := c.View(context.Background(), domain.Artifact{Filename: "bg.png", Kind: "output"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Errorf("View = %v, want %v", got, payload)
	}
}
