package handlers

import (
	"secureforms/internal/logger"
	"secureforms/internal/pages"
	"secureforms/internal/service"
	"secureforms/internal/session"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services, the session gate and logging.
type Handler struct {
	services *service.Service
	gate     *session.Gate
	pages    *pages.Router
	sessions gin.HandlerFunc
	log      *logger.Logger
}

// NewHandler constructs the HTTP handler. sessions is the middleware backing
// the session gate (see session.CookieMiddleware).
func NewHandler(services *service.Service, sessions gin.HandlerFunc, log *logger.Logger) *Handler {
	h := &Handler{
		services: services,
		gate:     session.NewGate(),
		sessions: sessions,
		log:      log,
	}
	h.pages = h.initPageRoutes()
	return h
}

// InitRoutes builds and returns the Gin engine with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.sessions)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// JSON account API
	h.registerAuthRoutes(router)

	// Everything else is a page request: run it through the page router,
	// falling through to not-found when nothing matches.
	router.NoRoute(h.dispatchPage)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/available", h.available)
		auth.GET("/me", h.requireSessionMiddleware, h.me)
	}
}

// initPageRoutes builds the ordered page table. Registration order matters:
// the page router is first-match-wins.
func (h *Handler) initPageRoutes() *pages.Router {
	pr := pages.NewRouter()
	pr.Register("", h.rootPage)
	pr.Register("accounts/login", h.loginPage)
	pr.Register("accounts/dashboard", h.dashboardPage, pages.WithAuth(h.redirectToLogin))
	pr.Register("accounts/dashboard/newform", h.newFormPage, pages.WithAuth(h.redirectToLogin))
	return pr
}
