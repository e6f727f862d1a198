package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Shadota/VN-Background-Generator/internal/comfy"
	"github.com/Shadota/VN-Background-Generator/internal/domain"
	"github.com/Shadota/VN-Background-Generator/internal/logger"
	"github.com/Shadota/VN-Background-Generator/internal/repository"
	"github.com/Shadota/VN-Background-Generator/internal/workflow"
	"github.com/google/uuid"
)

// maxConsecutivePollFailures bounds how many poll ticks may fail in a row
// before the poll loop gives up. A single network blip never kills a job.
const maxConsecutivePollFailures = 5

// GeneratorConfig tunes the job orchestrator.
type GeneratorConfig struct {
	Cooldown     time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
	RenderParams workflow.Params
}

// GenerationResult is handed to the external consumer once a job
// completes: the artifact reference plus resolvable URLs.
type GenerationResult struct {
	Job      *domain.GenerationJob
	Artifact domain.Artifact
	ImageURL string
	Prompt   string
}

// Generator drives a background generation job to completion: readiness
// probe, prompt derivation, graph instantiation, submission, polling, and
// artifact extraction. At most one job runs at a time process-wide, and a
// cooldown measured from the previous job's start rate-limits triggers.
type Generator struct {
	pipeline *ScenePipeline
	backend  *comfy.Client
	template *workflow.Template
	jobs     *repository.JobRepository
	archiver *ArtifactArchiver

	baseParams   workflow.Params
	cooldown     time.Duration
	pollInterval time.Duration
	pollTimeout  time.Duration

	mu        sync.Mutex
	inFlight  bool
	lastStart time.Time
}

// NewGenerator assembles the orchestrator. The archiver may be nil when
// the artifact archive is disabled.
func NewGenerator(
	pipeline *ScenePipeline,
	backend *comfy.Client,
	template *workflow.Template,
	jobs *repository.JobRepository,
	archiver *ArtifactArchiver,
	cfg *GeneratorConfig,
) *Generator {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 5 * time.Second
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Minute
	}
	return &Generator{
		pipeline:     pipeline,
		backend:      backend,
		template:     template,
		jobs:         jobs,
		archiver:     archiver,
		baseParams:   cfg.RenderParams,
		cooldown:     cooldown,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// Generate runs one request end to end. Requests arriving while a job is
// in flight or inside the cooldown window are rejected immediately,
// before any backend is contacted.
func (g *Generator) Generate(ctx context.Context, transcript []Turn) (*GenerationResult, error) {
	if err := g.acquire(); err != nil {
		return nil, err
	}
	defer g.release()

	requestID := uuid.New().String()
	ctx = logger.WithField(ctx, logger.FieldRequestID, requestID)

	// Readiness probe: an empty checkpoint list means the backend is
	// still loading. Retryable, nothing has been submitted.
	models, err := g.backend.ListOptions(ctx, workflow.ClassCheckpointLoader, "ckpt_name")
	if err != nil {
		return nil, fmt.Errorf("readiness probe failed: %w", err)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("readiness probe: %w", domain.ErrBackendNotReady)
	}

	bundle, err := g.pipeline.BuildPrompt(ctx, transcript)
	if err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "Composed prompt: tags=%d recognized=%v", len(bundle.Tags), bundle.Recognized)

	params := g.baseParams
	params.PositivePrompt = bundle.Positive
	params.NegativePrompt = bundle.Negative

	graph, seed, err := g.template.Instantiate(params)
	if err != nil {
		return nil, err
	}

	promptID, err := g.backend.Submit(ctx, graph, requestID)
	if err != nil {
		return nil, err
	}

	job := &domain.GenerationJob{
		ID:             promptID,
		RequestID:      requestID,
		Status:         domain.JobStatusRendering,
		Prompt:         bundle.Positive,
		NegativePrompt: bundle.Negative,
		Seed:           seed,
	}
	if err := g.jobs.Create(ctx, job); err != nil {
		logger.CtxWarn(ctx, "Failed to record job %s: %v", promptID, err)
	}

	ctx = logger.WithField(ctx, logger.FieldJobID, promptID)
	artifact, err := g.poll(ctx, promptID)
	if err != nil {
		g.markFailed(ctx, job, err)
		return nil, err
	}

	result := &GenerationResult{
		Job:      job,
		Artifact: artifact,
		ImageURL: g.backend.ViewURL(artifact),
		Prompt:   bundle.Positive,
	}

	if g.archiver != nil {
		if url, archiveErr := g.archiver.Archive(ctx, g.backend, artifact, promptID); archiveErr != nil {
			// Archive failures don't fail the job: the artifact is
			// still reachable on the rendering backend.
			logger.CtxWarn(ctx, "Artifact archive failed: %v", archiveErr)
		} else {
			job.ArchiveURL = url
			result.ImageURL = url
		}
	}

	now := time.Now()
	job.Status = domain.JobStatusCompleted
	job.SetArtifact(artifact)
	job.CompletedAt = &now
	if err := g.jobs.Update(ctx, job); err != nil {
		logger.CtxWarn(ctx, "Failed to update job %s: %v", promptID, err)
	}

	logger.CtxInfo(ctx, "Generation completed: artifact=%s", artifact.Filename)
	return result, nil
}

// acquire takes the single-flight slot or reports why it cannot.
// The check and the set happen under one lock: no interleaving window.
func (g *Generator) acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return domain.ErrGenerationInFlight
	}
	if !g.lastStart.IsZero() && time.Since(g.lastStart) < g.cooldown {
		return domain.ErrCooldownActive
	}
	g.inFlight = true
	g.lastStart = time.Now()
	return nil
}

func (g *Generator) release() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

// poll watches the history endpoint until the job exposes outputs, the
// bounded timeout elapses, or the context is cancelled. Individual tick
// errors are tolerated up to a consecutive-failure limit.
func (g *Generator) poll(ctx context.Context, promptID string) (domain.Artifact, error) {
	deadline := time.Now().Add(g.pollTimeout)
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return domain.Artifact{}, fmt.Errorf("generation cancelled: %w", ctx.Err())
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return domain.Artifact{}, fmt.Errorf("job %s did not finish within %s", promptID, g.pollTimeout)
		}

		entry, err := g.backend.History(ctx, promptID)
		if err != nil {
			failures++
			logger.CtxWarn(ctx, "Poll tick failed (%d/%d): %v", failures, maxConsecutivePollFailures, err)
			if failures >= maxConsecutivePollFailures {
				return domain.Artifact{}, fmt.Errorf("polling gave up after %d consecutive failures: %w", failures, err)
			}
			continue
		}
		failures = 0

		if entry == nil || len(entry.Outputs) == 0 {
			continue
		}
		return extractArtifact(entry)
	}
}

// extractArtifact scans node outputs in deterministic order for the first
// image-like result. A completed job with no image is its own condition,
// distinct from parse errors.
func extractArtifact(entry *comfy.HistoryEntry) (domain.Artifact, error) {
	nodeIDs := make([]string, 0, len(entry.Outputs))
	for id := range entry.Outputs {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	for _, id := range nodeIDs {
		for _, img := range entry.Outputs[id].Images {
			if img.Filename == "" {
				continue
			}
			return domain.Artifact{
				Filename:  img.Filename,
				Subfolder: img.Subfolder,
				Kind:      img.Type,
			}, nil
		}
	}
	return domain.Artifact{}, domain.ErrNoOutputProduced
}

func (g *Generator) markFailed(ctx context.Context, job *domain.GenerationJob, cause error) {
	now := time.Now()
	job.Status = domain.JobStatusFailed
	job.ErrorText = cause.Error()
	job.CompletedAt = &now
	if err := g.jobs.Update(ctx, job); err != nil {
		logger.CtxWarn(ctx, "Failed to update job %s: %v", job.ID, err)
	}
}
