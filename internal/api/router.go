package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Shadota/VN-Background-Generator/internal/api/handler"
	"github.com/Shadota/VN-Background-Generator/internal/api/middleware"
	"github.com/Shadota/VN-Background-Generator/internal/comfy"
	"github.com/Shadota/VN-Background-Generator/internal/repository"
	"github.com/Shadota/VN-Background-Generator/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	generator *service.Generator,
	jobs *repository.JobRepository,
	backend *comfy.Client,
	mode string,
	cors middleware.CORSOptions,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler(backend)
	generateHandler := handler.NewGenerateHandler(generator)
	jobHandler := handler.NewJobHandler(jobs)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/generate", generateHandler.Generate)

		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:id", jobHandler.GetJob)
	}

	return r
}
