package jira

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tuannvm/jira-story/internal/story"
)

// JiraWebhookPayload represents the parts of a Jira webhook payload we read.
// Issue fields are parsed separately to keep their order.
type JiraWebhookPayload struct {
	ID           int       `json:"id"`
	Timestamp    int64     `json:"timestamp"`
	Issue        JiraIssue `json:"issue"`
	User         JiraUser  `json:"user"`
	WebhookEvent string    `json:"webhookEvent"`
}

// JiraIssue represents a Jira issue in the webhook
type JiraIssue struct {
	ID   string `json:"id"`
	Self string `json:"self"`
	Key  string `json:"key"`
}

// JiraUser represents a Jira user in the webhook
type JiraUser struct {
	Name         string `json:"name"`
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// WebhookEvent is an issue event with the issue fields embedded in the payload
type WebhookEvent struct {
	IssueKey   string
	ProjectKey string
	Event      string // "created", "updated", "deleted", ...
	UserName   string
	Timestamp  string
	Fields     *story.FieldSet
}

// TransformJiraWebhook converts a Jira webhook payload into a WebhookEvent
func TransformJiraWebhook(payload []byte) (*WebhookEvent, error) {
	var jiraWebhook JiraWebhookPayload
	if err := json.Unmarshal(payload, &jiraWebhook); err != nil {
		return nil, err
	}
	if jiraWebhook.Issue.Key == "" {
		return nil, errors.New("webhook payload has no issue key")
	}

	fields, err := story.ParseFieldSet([]byte(fieldsRaw(gjson.GetBytes(payload, "issue.fields"))))
	if err != nil {
		return nil, err
	}

	event := &WebhookEvent{
		IssueKey: jiraWebhook.Issue.Key,
		Event:    getEventTypeFromWebhookEvent(jiraWebhook.WebhookEvent),
		UserName: jiraWebhook.User.DisplayName,
		Fields:   fields,
	}
	if event.UserName == "" {
		event.UserName = jiraWebhook.User.Name
	}

	// Extract project key from issue key (e.g., "JRA" from "JRA-20002")
	if i := strings.LastIndex(jiraWebhook.Issue.Key, "-"); i > 0 {
		event.ProjectKey = jiraWebhook.Issue.Key[:i]
	}

	if jiraWebhook.Timestamp > 0 {
		event.Timestamp = time.UnixMilli(jiraWebhook.Timestamp).UTC().Format(time.RFC3339)
	} else {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	return event, nil
}

// getEventTypeFromWebhookEvent extracts the simplified event type from the full webhook event
func getEventTypeFromWebhookEvent(webhookEvent string) string {
	switch webhookEvent {
	case "jira:issue_created":
		return "created"
	case "jira:issue_updated":
		return "updated"
	case "jira:issue_deleted":
		return "deleted"
	default:
		// Extract event name after colon if present
		if parts := strings.SplitN(webhookEvent, ":", 2); len(parts) > 1 {
			return parts[1]
		}
		return webhookEvent
	}
}
