package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snapfeed/snapfeed/internal/service"
	"github.com/snapfeed/snapfeed/pkg/config"
	"github.com/snapfeed/snapfeed/pkg/logging"
)

// Router sets up API routes
type Router struct {
	svc        *service.Service
	cookieName string
	cookieTTL  int
	logger     *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(svc *service.Service, cfg *config.SessionConfig) *Router {
	return &Router{
		svc:        svc,
		cookieName: cfg.CookieName,
		cookieTTL:  int(cfg.TTL.Seconds()),
		logger:     logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(r.Gate())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)

	// Mutations (form-post-then-redirect)
	engine.POST("/likes/", r.updateLikes)
	engine.POST("/comments/", r.updateComments)
	engine.POST("/posts/", r.updatePosts)
	engine.POST("/following/", r.updateFollowing)
	engine.POST("/accounts/", r.accountsOps)
	engine.POST("/accounts/logout/", r.accountsLogout)

	// Pages and reads
	engine.GET("/", r.showIndex)
	engine.GET("/explore/", r.showExplore)
	engine.GET("/users/:username/", r.showUser)
	engine.GET("/users/:username/followers/", r.showFollowers)
	engine.GET("/users/:username/following/", r.showFollowing)
	engine.GET("/posts/:postid/", r.showPost)
	engine.GET("/uploads/:filename", r.serveUpload)

	engine.GET("/accounts/", r.accountsRedirect)
	engine.GET("/accounts/login/", r.accountsLoginPage)
	engine.GET("/accounts/create/", r.accountsCreatePage)
	engine.GET("/accounts/edit/", r.accountsEditPage)
	engine.GET("/accounts/password/", r.accountsPasswordPage)
	engine.GET("/accounts/delete/", r.accountsDeletePage)
	engine.GET("/accounts/auth/", r.accountsAuth)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "snapfeed",
	})
}

// setSession installs the session cookie for a freshly minted token
func (r *Router) setSession(c *gin.Context, token string) {
	c.SetCookie(r.cookieName, token, r.cookieTTL, "/", "", false, true)
}

// clearSession drops the session cookie
func (r *Router) clearSession(c *gin.Context) {
	c.SetCookie(r.cookieName, "", -1, "/", "", false, true)
}

// sessionToken returns the raw cookie token for this request
func (r *Router) sessionToken(c *gin.Context) string {
	token, _ := c.Cookie(r.cookieName)
	return token
}

// redirectTarget returns the caller-supplied navigation continuation
func redirectTarget(c *gin.Context, fallback string) string {
	if target := c.Query("target"); target != "" {
		return target
	}
	return fallback
}
