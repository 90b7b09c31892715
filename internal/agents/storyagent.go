package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tuannvm/jira-story/internal/config"
	"github.com/tuannvm/jira-story/internal/jira"
	log "github.com/tuannvm/jira-story/internal/logging"
	"github.com/tuannvm/jira-story/internal/models"
	"github.com/tuannvm/jira-story/internal/story"
)

var (
	// ErrEmptyIssueKey is returned when an issue key is blank
	ErrEmptyIssueKey = errors.New("issue key is required")
	// ErrEmptyProjectKey is returned when a project key is blank
	ErrEmptyProjectKey = errors.New("project key is required")
)

// StoryAgent resolves Jira stories into summary, description and acceptance
// criteria. It holds no per-request state, so one agent can serve
// concurrent requests.
type StoryAgent struct {
	cfg    *config.Config
	source jira.IssueSource
}

// NewStoryAgent creates a new StoryAgent reading from source
func NewStoryAgent(cfg *config.Config, source jira.IssueSource) *StoryAgent {
	return &StoryAgent{cfg: cfg, source: source}
}

// ResolveIssue fetches an issue and resolves its acceptance criteria
func (a *StoryAgent) ResolveIssue(ctx context.Context, issueKey string) (*models.ResolvedIssue, error) {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return nil, ErrEmptyIssueKey
	}

	acField := a.acceptanceField(ctx)
	fieldIDs := []string{story.FieldSummary, story.FieldDescription}
	if acField != "" {
		fieldIDs = append(fieldIDs, acField)
	}

	payload, err := a.source.GetIssueFields(ctx, issueKey, fieldIDs)
	if err != nil {
		log.Errorf("Failed to fetch Jira issue %s: %v", issueKey, err)
		return nil, fmt.Errorf("failed to fetch issue %s: %w", issueKey, err)
	}

	key := payload.Key
	if key == "" {
		key = issueKey
	}
	issue, stage := story.Resolver{ACFieldID: acField}.ResolveWithStage(key, payload.Fields)
	log.Infof("Resolved %s: acceptance criteria from %s (%d chars)", key, stage, len(issue.AcceptanceCriteria))
	return &issue, nil
}

// ResolveWebhook resolves the issue embedded in a Jira webhook payload
// without calling Jira again. Field discovery still applies.
func (a *StoryAgent) ResolveWebhook(ctx context.Context, payload []byte) (*models.ResolvedIssue, error) {
	event, err := jira.TransformJiraWebhook(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	log.Infof("Webhook %s for %s from %s", event.Event, event.IssueKey, event.UserName)

	issue, stage := story.Resolver{ACFieldID: a.acceptanceField(ctx)}.ResolveWithStage(event.IssueKey, event.Fields)
	log.Infof("Resolved %s from webhook: acceptance criteria from %s", event.IssueKey, stage)
	return &issue, nil
}

// ResolveIssues lists the stories of a project
func (a *StoryAgent) ResolveIssues(ctx context.Context, projectKey string) ([]models.IssueSummary, error) {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return nil, ErrEmptyProjectKey
	}
	issues, err := a.source.SearchStories(ctx, projectKey)
	if err != nil {
		log.Errorf("Failed to fetch Jira issues for project %s: %v", projectKey, err)
		return nil, fmt.Errorf("failed to list issues of %s: %w", projectKey, err)
	}
	return issues, nil
}

// ListProjects lists the Jira projects visible to the configured account
func (a *StoryAgent) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := a.source.ListProjects(ctx)
	if err != nil {
		log.Errorf("Failed to fetch Jira projects: %v", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ResolveBatch resolves several issues in parallel. Results keep the order of
// keys; a failed issue is reported in its result instead of failing the batch.
func (a *StoryAgent) ResolveBatch(ctx context.Context, keys []string) []models.BatchResult {
	results := make([]models.BatchResult, len(keys))

	limit := 1
	if a.cfg != nil && a.cfg.BatchConcurrency > 1 {
		limit = a.cfg.BatchConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, key := range keys {
		g.Go(func() error {
			results[i].Key = key
			if err := ctx.Err(); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			issue, err := a.ResolveIssue(ctx, key)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Issue = issue
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// acceptanceField returns the configured acceptance criteria field or, when
// none is configured, tries to discover one. Discovery failures are logged
// and yield "".
func (a *StoryAgent) acceptanceField(ctx context.Context) string {
	if a.cfg != nil && a.cfg.JiraACField != "" {
		return a.cfg.JiraACField
	}

	fields, err := a.source.GetFieldMetadata(ctx)
	if err != nil {
		log.Warnf("Failed to discover acceptance criteria field: %v", err)
		return ""
	}
	id := story.DiscoverAcceptanceField(fields)
	if id != "" {
		log.Debugf("Discovered acceptance criteria field %s", id)
	}
	return id
}
