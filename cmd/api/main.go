package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shadota/VN-Background-Generator/internal/api"
	"github.com/Shadota/VN-Background-Generator/internal/api/middleware"
	"github.com/Shadota/VN-Background-Generator/internal/comfy"
	"github.com/Shadota/VN-Background-Generator/internal/config"
	"github.com/Shadota/VN-Background-Generator/internal/logger"
	"github.com/Shadota/VN-Background-Generator/internal/repository"
	"github.com/Shadota/VN-Background-Generator/internal/service"
	"github.com/Shadota/VN-Background-Generator/internal/storage"
	"github.com/Shadota/VN-Background-Generator/internal/workflow"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New(logger.DefaultConfig())
	logger.SetDefault(appLog)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLog.Fatalf("Failed to initialize database: %v", err)
	}
	jobRepo := repository.NewJobRepository(db)

	// Artifact archive is optional. Without it rendered images are served
	// straight from the rendering backend.
	var archiver *service.ArtifactArchiver
	if cfg.Archive.Enabled {
		store, err := storage.New(&storage.Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			PublicURL: cfg.Archive.PublicURL,
		})
		if err != nil {
			appLog.Fatalf("Failed to initialize artifact archive: %v", err)
		}
		if s3store, ok := store.(*storage.S3Store); ok {
			if err := s3store.EnsureBucket(context.Background()); err != nil {
				appLog.Fatalf("Failed to ensure archive bucket: %v", err)
			}
		}
		archiver = service.NewArtifactArchiver(store)
	}

	describer, err := service.NewSceneDescriber(&service.DescriberConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
	})
	if err != nil {
		appLog.Fatalf("Failed to initialize scene describer: %v", err)
	}

	pipeline := service.NewScenePipeline(describer, &service.PipelineConfig{
		Mode:             service.PipelineMode(cfg.Pipeline.Mode),
		HistoryTurns:     cfg.Pipeline.HistoryTurns,
		MaxTags:          cfg.Pipeline.MaxTags,
		FreeformLocation: cfg.Pipeline.FreeformLocation,
	})

	backend, err := comfy.NewClient(&comfy.Config{
		BaseURL: cfg.Comfy.BaseURL,
	})
	if err != nil {
		appLog.Fatalf("Failed to initialize rendering backend client: %v", err)
	}

	params := workflow.Params{
		ModelName: cfg.Comfy.Model,
		Sampler:   cfg.Comfy.Sampler,
		Steps:     cfg.Comfy.Steps,
		CFG:       cfg.Comfy.CFG,
		Denoise:   cfg.Comfy.Denoise,
		Width:     cfg.Comfy.Width,
		Height:    cfg.Comfy.Height,
		Seed:      -1,
	}
	for i, name := range cfg.Comfy.LoraNames {
		if i >= len(params.LoraNames) {
			break
		}
		params.LoraNames[i] = name
		if i < len(cfg.Comfy.LoraWeights) {
			params.LoraWeights[i] = cfg.Comfy.LoraWeights[i]
		}
	}

	generator := service.NewGenerator(
		pipeline,
		backend,
		workflow.DefaultTemplate(),
		jobRepo,
		archiver,
		&service.GeneratorConfig{
			Cooldown:     time.Duration(cfg.Generation.CooldownSeconds) * time.Second,
			PollInterval: time.Duration(cfg.Generation.PollIntervalMillis) * time.Millisecond,
			PollTimeout:  time.Duration(cfg.Generation.PollTimeoutSeconds) * time.Second,
			RenderParams: params,
		},
	)

	router := api.SetupRouter(generator, jobRepo, backend, cfg.Server.Mode, middleware.CORSOptions{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLog.Infof("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatalf("Server forced to shutdown: %v", err)
	}

	appLog.Info("Server exited")
}
