package jira

import (
	"context"

	"github.com/tuannvm/jira-story/internal/config"
	"github.com/tuannvm/jira-story/internal/models"
	"github.com/tuannvm/jira-story/internal/story"
)

// IssuePayload is an issue key with its raw fields
type IssuePayload struct {
	Key    string
	Fields *story.FieldSet
}

// IssueSource defines the Jira operations the story pipeline depends on
type IssueSource interface {
	GetIssueFields(ctx context.Context, issueKey string, fieldIDs []string) (*IssuePayload, error)
	GetFieldMetadata(ctx context.Context) ([]models.FieldMeta, error)
	SearchStories(ctx context.Context, projectKey string) ([]models.IssueSummary, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
}

var _ IssueSource = (*Client)(nil)

// NewAtlassianClient creates an IssueSource backed by go-atlassian
func NewAtlassianClient(cfg *config.Config) (IssueSource, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
