// Package api serves the story pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tuannvm/jira-story/internal/agents"
	"github.com/tuannvm/jira-story/internal/eval"
	"github.com/tuannvm/jira-story/internal/jira"
	"github.com/tuannvm/jira-story/internal/llm"
	log "github.com/tuannvm/jira-story/internal/logging"
	"github.com/tuannvm/jira-story/internal/models"
)

// StoryService is the part of agents.StoryAgent the handlers use.
type StoryService interface {
	ResolveIssue(ctx context.Context, issueKey string) (*models.ResolvedIssue, error)
	ResolveIssues(ctx context.Context, projectKey string) ([]models.IssueSummary, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ResolveBatch(ctx context.Context, keys []string) []models.BatchResult
	ResolveWebhook(ctx context.Context, payload []byte) (*models.ResolvedIssue, error)
}

// Handlers contains the HTTP handlers.
type Handlers struct {
	stories   StoryService
	generator *llm.Generator
}

// NewHandlers creates handlers for the given service. generator may be nil,
// in which case test generation answers 503.
func NewHandlers(stories StoryService, generator *llm.Generator) *Handlers {
	return &Handlers{stories: stories, generator: generator}
}

// HandleGetIssue handles GET /api/jira/:issueKey.
func (h *Handlers) HandleGetIssue(c *gin.Context) {
	issue, err := h.stories.ResolveIssue(c.Request.Context(), c.Param("issueKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// HandleListProjects handles GET /api/jira/projects.
func (h *Handlers) HandleListProjects(c *gin.Context) {
	projects, err := h.stories.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// HandleListIssues handles GET /api/jira/projects/:projectKey/issues.
func (h *Handlers) HandleListIssues(c *gin.Context) {
	issues, err := h.stories.ResolveIssues(c.Request.Context(), c.Param("projectKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// BatchRequest is the body of POST /api/jira/batch.
type BatchRequest struct {
	Keys []string `json:"keys" binding:"required,min=1"`
}

// HandleBatch handles POST /api/jira/batch.
func (h *Handlers) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keys must be a non-empty array"})
		return
	}
	c.JSON(http.StatusOK, h.stories.ResolveBatch(c.Request.Context(), req.Keys))
}

// HandleWebhook handles POST /api/jira/webhook.
func (h *Handlers) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body cannot be empty"})
		return
	}
	issue, err := h.stories.ResolveWebhook(c.Request.Context(), body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, issue)
}

// HandleGenerateTests handles POST /api/generate-tests.
func (h *Handlers) HandleGenerateTests(c *gin.Context) {
	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "test generation is disabled"})
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Errorf("Test generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// evalRequest accepts metric as a string or a list of strings.
type evalRequest struct {
	Query   string      `json:"query"`
	Output  string      `json:"output"`
	Context []string    `json:"context"`
	Metric  interface{} `json:"metric"`
}

// HandleEval handles POST /api/deepeval/eval-only. A single metric is
// returned unwrapped, several metrics as a map keyed by metric name.
func (h *Handlers) HandleEval(c *gin.Context) {
	var req evalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	metrics := metricNames(req.Metric)
	if len(metrics) == 0 {
		metrics = []string{eval.AnswerRelevancy}
	}
	results := eval.EvaluateAll(eval.Request{
		Query:   req.Query,
		Output:  req.Output,
		Context: req.Context,
		Metrics: metrics,
	})

	if len(metrics) == 1 {
		c.JSON(http.StatusOK, gin.H{"evaluation": results[metrics[0]]})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": results})
}

// HandleEvalHealth handles GET /api/deepeval/health.
func (h *Handlers) HandleEvalHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "deepeval-demo"})
}

func metricNames(v interface{}) []string {
	switch m := v.(type) {
	case string:
		if m == "" {
			return nil
		}
		return []string{m}
	case []interface{}:
		var out []string
		for _, item := range m {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, agents.ErrEmptyIssueKey) || errors.Is(err, agents.ErrEmptyProjectKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := jira.StatusCode(err)
	log.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, gin.H{"error": err.Error()})
}
