package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chamba-onchain-backend/config"
	"chamba-onchain-backend/internal/delivery/http/middleware"
	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/internal/usecase"
	"chamba-onchain-backend/pkg/validation"
)

type RouterDeps struct {
	Session       domain.WalletSession
	Tokens        middleware.TokenParser
	AuthUC        domain.AuthUsecase
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	ProfileUC     domain.ProfileUsecase
	AssetUC       domain.AssetUsecase
	AccessUC      domain.AccessUsecase
	HealthUC      usecase.HealthUsecase
	UploadLimiter UploadLimiter
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	cfg := deps.Config
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsDevelopment())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	v1.Use(middleware.RateLimit(middleware.IPPolicy(cfg.RateLimitGlobalThreshold, window)))

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	if cfg.SwaggerEnabled {
		v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	NewWalletHandler(v1, deps.Session, deps.AuthUC)
	NewAuthHandler(v1, deps.AuthUC, middleware.RateLimit(middleware.SignInPolicy()))

	// Protected routes
	protected := v1.Group("")
	protected.Use(
		middleware.AuthMiddleware(deps.Tokens, deps.Session),
		middleware.RateLimit(middleware.WalletPolicy(cfg.RateLimitWalletThreshold, window)),
	)
	{
		NewJobHandler(v1, protected, deps.JobUC, deps.ApplicationUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewProfileHandler(v1, protected, deps.ProfileUC)
		NewAssetHandler(protected, middleware.RequireSession(), deps.AssetUC, deps.UploadLimiter, cfg.UploadMaxBytes)
		NewAccessHandler(protected, middleware.RequireSession(), deps.AccessUC)
	}

	return r
}
