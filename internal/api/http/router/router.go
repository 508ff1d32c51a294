package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/api/http/handler"
	"github.com/dtroode/campusmarket-server/internal/api/http/middleware"
	"github.com/dtroode/campusmarket-server/internal/logger"
)

// Config holds HTTP router options.
type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Router wires HTTP handlers and middleware.
type Router struct {
	authService    handler.AuthService
	userService    handler.UserService
	listingService handler.ListingService
	messageService handler.MessageService
	universities   handler.UniversityLister
	tokenService   middleware.TokenService
	cfg            Config
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	userService handler.UserService,
	listingService handler.ListingService,
	messageService handler.MessageService,
	universities handler.UniversityLister,
	tokenService middleware.TokenService,
	cfg Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		userService:    userService,
		listingService: listingService,
		messageService: messageService,
		universities:   universities,
		tokenService:   tokenService,
		cfg:            cfg,
		logger:         logger,
	}
}

// Register builds the gin engine with every route.
func (r *Router) Register() http.Handler {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.NewLogging(r.logger).Handle,
		cors.New(r.corsConfig()),
		middleware.NewAuthenticate(r.tokenService, r.logger).Handle,
	)

	engine.GET("/health", handler.Health)
	engine.GET("/universities", handler.Universities(r.universities))

	r.registerAuthRoutes(engine)
	r.registerUserRoutes(engine)
	r.registerListingRoutes(engine)
	r.registerMessageRoutes(engine)

	return engine
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(r.cfg.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.cfg.AllowedOrigins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (r *Router) registerAuthRoutes(engine *gin.Engine) {
	h := handler.NewAuth(r.authService, r.logger)

	auth := engine.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/vcode", h.RequestCode)
	auth.POST("/request-code", h.RequestCode)
	auth.POST("/verify", h.Verify)
	auth.POST("/login", h.Login)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
}

func (r *Router) registerUserRoutes(engine *gin.Engine) {
	h := handler.NewUser(r.userService, r.logger)

	engine.GET("/user", middleware.RequireSession, h.Me)
	engine.GET("/users/:email", h.Public)
}

func (r *Router) registerListingRoutes(engine *gin.Engine) {
	h := handler.NewListing(r.listingService, r.cfg.MaxUploadBytes, r.logger)

	listings := engine.Group("/listings", middleware.RequireSession)
	listings.POST("", h.Create)
	listings.GET("/search", h.Search)
	listings.GET("/university", h.ListUniversity)
	listings.GET("/me", h.ListMine)
	listings.GET("/:id", h.Get)
	listings.DELETE("/:id", h.Delete)
}

func (r *Router) registerMessageRoutes(engine *gin.Engine) {
	h := handler.NewMessage(r.messageService, r.logger)

	messages := engine.Group("/messages", middleware.RequireSession)
	messages.GET("/threads", h.Threads)
	messages.GET("/with/:other", h.Conversation)
	messages.POST("/:recipient", h.Send)
}
