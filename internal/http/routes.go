package http

import (
	"github.com/benisnotitdog/task-manager-api/internal/http/handlers"
	"github.com/benisnotitdog/task-manager-api/internal/http/middleware"
	"github.com/benisnotitdog/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs to serve requests.
type Deps struct {
	Auth           *service.AuthService
	Tasks          *service.TaskService
	DB             handlers.Pinger
	Version        string
	AllowedOrigins []string
}

// NewRouter builds the engine with the standard middleware chain and all routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(deps.AllowedOrigins),
	)
	r.HandleMethodNotAllowed = true

	RegisterRoutes(r, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	h := handlers.NewHandler(deps.Auth, deps.Tasks)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Version)

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	requireAuth := middleware.JWT(deps.Auth)

	me := r.Group("/me", requireAuth)
	{
		me.GET("", h.Me)
		me.DELETE("", h.DeleteMe)
	}

	tasks := r.Group("/tasks", requireAuth)
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}
}
