package v1

import (
	"time"

	"github.com/bugtracker-api/middleware"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler carries the services every v1 endpoint delegates to
type Handler struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Projects *services.ProjectService
	Issues   *services.IssueService
	Comments *services.CommentService
	Gate     *middleware.AuthGate
	Cookies  middleware.CookieSettings
	TokenTTL time.Duration
	Log      *logrus.Logger
}

// RouterOptions configures the engine built by NewRouter
type RouterOptions struct {
	CORSOrigins []string
	Metrics     *middleware.Metrics
}

// NewRouter builds the gin engine with the shared middleware chain and mounts
// the v1 routes under /api/v1
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Log))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = opts.CORSOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler())
		router.GET("/metrics", opts.Metrics.Exposition())
	}

	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

// RegisterRoutes registers all v1 API routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// Auth endpoints
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		// Use auth middleware here only for the /me endpoint
		authGroup.GET("/me", h.Gate.Middleware(), h.GetCurrentUser)
	}

	protected := router.Group("")
	protected.Use(h.Gate.Middleware())

	userGroup := protected.Group("/users")
	{
		userGroup.GET("", middleware.RequireRoles(models.RoleAdmin), h.ListUsers)
		userGroup.GET("/:id", h.GetUser)
	}

	projectGroup := protected.Group("/projects")
	{
		projectGroup.GET("", h.ListProjects)
		projectGroup.POST("", h.CreateProject)
		projectGroup.GET("/:id", h.GetProject)
		projectGroup.PUT("/:id", h.UpdateProject)
		projectGroup.DELETE("/:id", h.DeleteProject)
		projectGroup.POST("/:id/members", h.AddMember)
		projectGroup.DELETE("/:id/members/:userId", h.RemoveMember)
		projectGroup.GET("/:id/issues", h.ListProjectIssues)
	}

	issueGroup := protected.Group("/issues")
	{
		issueGroup.GET("", h.ListIssues)
		issueGroup.POST("", h.CreateIssue)
		issueGroup.GET("/:id", h.GetIssue)
		issueGroup.PUT("/:id", h.UpdateIssue)
		issueGroup.DELETE("/:id", h.DeleteIssue)
		issueGroup.GET("/:id/comments", h.ListComments)
		issueGroup.POST("/:id/comments", h.CreateComment)
	}

	commentGroup := protected.Group("/comments")
	{
		commentGroup.PUT("/:id", h.UpdateComment)
		commentGroup.DELETE("/:id", h.DeleteComment)
	}
}
