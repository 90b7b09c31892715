package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"trpc.group/trpc-go/trpc-a2a-go/auth"

	log "github.com/tuannvm/jira-story/internal/logging"
)

// AuthUserKey is the gin context key holding the authenticated webhook caller
const AuthUserKey = "authUser"

// RegisterRoutes registers the API endpoints on rg (typically /api):
//
//	GET  /jira/projects
//	GET  /jira/projects/:projectKey/issues
//	GET  /jira/:issueKey
//	POST /jira/batch
//	POST /jira/webhook
//	POST /generate-tests
//	POST /deepeval/eval-only
//	GET  /deepeval/health
//
// webhookAuth, when non-nil, guards the webhook route.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers, webhookAuth auth.Provider) {
	j := rg.Group("/jira")
	{
		j.GET("/projects", h.HandleListProjects)
		j.GET("/projects/:projectKey/issues", h.HandleListIssues)
		j.GET("/:issueKey", h.HandleGetIssue)
		j.POST("/batch", h.HandleBatch)
		j.POST("/webhook", RequireAuth(webhookAuth), h.HandleWebhook)
	}

	rg.POST("/generate-tests", h.HandleGenerateTests)

	e := rg.Group("/deepeval")
	{
		e.POST("/eval-only", h.HandleEval)
		e.GET("/health", h.HandleEvalHealth)
	}
}

// NewRouter builds a gin engine serving the API under /api.
func NewRouter(h *Handlers, webhookAuth auth.Provider) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router.Group("/api"), h, webhookAuth)
	return router
}

// RequireAuth authenticates requests with provider before passing them on.
// A nil provider lets every request through.
func RequireAuth(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if provider == nil {
			c.Next()
			return
		}
		user, err := provider.Authenticate(c.Request)
		if err != nil {
			log.Warnf("Authentication failed for %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(AuthUserKey, user)
		c.Next()
	}
}
