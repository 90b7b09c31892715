package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	v3 "github.com/ctreminiom/go-atlassian/v2/jira/v3"
	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"
	"github.com/tidwall/gjson"

	"github.com/tuannvm/jira-story/internal/config"
	log "github.com/tuannvm/jira-story/internal/logging"
	storymodels "github.com/tuannvm/jira-story/internal/models"
	"github.com/tuannvm/jira-story/internal/story"
)

// Client represents a Jira Cloud REST v3 client
type Client struct {
	config *config.Config
	api    *v3.Client
}

// NewClient creates a new Jira client authenticated with email and API token
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.JiraBaseURL == "" {
		return nil, errors.New("jira base URL is not configured")
	}

	timeout := time.Duration(cfg.JiraTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	api, err := v3.New(&http.Client{Timeout: timeout}, strings.TrimRight(cfg.JiraBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}
	api.Auth.SetBasicAuth(cfg.JiraEmail, cfg.JiraAPIToken)

	return &Client{config: cfg, api: api}, nil
}

// GetIssueFields fetches the requested fields of an issue. The returned
// FieldSet keeps the order Jira sent the fields in.
func (c *Client) GetIssueFields(ctx context.Context, issueKey string, fieldIDs []string) (*IssuePayload, error) {
	endpoint := fmt.Sprintf("rest/api/3/issue/%s", url.PathEscape(issueKey))
	if len(fieldIDs) > 0 {
		endpoint += "?fields=" + url.QueryEscape(strings.Join(fieldIDs, ","))
	}

	log.Infof("Jira: fetching issue %s (%s)", issueKey, endpoint)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	raw := gjson.ParseBytes(body)
	fields, err := story.ParseFieldSet([]byte(fieldsRaw(raw.Get("fields"))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fields of %s: %w", issueKey, err)
	}

	key := raw.Get("key").String()
	if key == "" {
		key = issueKey
	}
	return &IssuePayload{Key: key, Fields: fields}, nil
}

// GetFieldMetadata lists every field known to the Jira instance
func (c *Client) GetFieldMetadata(ctx context.Context) ([]storymodels.FieldMeta, error) {
	body, err := c.do(ctx, http.MethodGet, "rest/api/3/field", nil)
	if err != nil {
		return nil, err
	}

	var fields []storymodels.FieldMeta
	gjson.ParseBytes(body).ForEach(func(_, f gjson.Result) bool {
		fields = append(fields, storymodels.FieldMeta{
			ID:   f.Get("id").String(),
			Name: f.Get("name").String(),
		})
		return true
	})
	return fields, nil
}

// SearchStories lists the stories of a project, newest first. Only summaries
// are requested.
func (c *Client) SearchStories(ctx context.Context, projectKey string) ([]storymodels.IssueSummary, error) {
	maxResults := c.config.JiraMaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	payload := map[string]interface{}{
		"jql":        fmt.Sprintf("project = %s AND issuetype = Story ORDER BY created DESC", quoteJQL(projectKey)),
		"fields":     []string{"summary"},
		"maxResults": maxResults,
	}

	log.Infof("Jira: searching stories of project %s", projectKey)
	body, err := c.do(ctx, http.MethodPost, "rest/api/3/search/jql", payload)
	if err != nil {
		return nil, err
	}

	issues := []storymodels.IssueSummary{}
	gjson.GetBytes(body, "issues").ForEach(func(_, issue gjson.Result) bool {
		issues = append(issues, storymodels.IssueSummary{
			Key:     issue.Get("key").String(),
			Summary: issue.Get("fields.summary").String(),
		})
		return true
	})
	return issues, nil
}

// ListProjects lists the projects visible to the configured user, ordered by name
func (c *Client) ListProjects(ctx context.Context) ([]storymodels.Project, error) {
	body, err := c.do(ctx, http.MethodGet, "rest/api/3/project/search?orderBy=name", nil)
	if err != nil {
		return nil, err
	}

	values := gjson.ParseBytes(body)
	if !values.IsArray() {
		values = values.Get("values")
	}

	projects := []storymodels.Project{}
	values.ForEach(func(_, p gjson.Result) bool {
		projects = append(projects, storymodels.Project{
			Key:  p.Get("key").String(),
			Name: p.Get("name").String(),
		})
		return true
	})
	return projects, nil
}

// do sends a request through go-atlassian and returns the raw body
func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	req, err := c.api.NewRequest(ctx, method, endpoint, "", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := c.api.Call(req, nil)
	if err != nil {
		return nil, transportError(res, err)
	}
	return res.Bytes.Bytes(), nil
}

func transportError(res *models.ResponseScheme, err error) error {
	if res == nil || res.Code == 0 {
		return &TransportError{Message: err.Error(), Err: err}
	}
	msg := strings.TrimSpace(res.Bytes.String())
	if msg == "" {
		msg = http.StatusText(res.Code)
	}
	return &TransportError{StatusCode: res.Code, Message: msg, Err: err}
}

func fieldsRaw(r gjson.Result) string {
	if !r.Exists() {
		return "{}"
	}
	return r.Raw
}

// quoteJQL quotes a project key unless it is a plain identifier
func quoteJQL(s string) string {
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
	}
	return s
}
