package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/jira-story/internal/common"
	log "github.com/tuannvm/jira-story/internal/logging"
)

// ResolveStorySkill is the A2A skill id served by StoryAgent
const ResolveStorySkill = "resolve-story"

var _ taskmanager.TaskProcessor = (*StoryAgent)(nil)

// Process implements the TaskProcessor interface from trpc-a2a-go. The
// message carries an issue key, either as plain text or as JSON
// ({"issueKey": "PROJ-1"}); the task completes with the resolved issue as JSON.
func (a *StoryAgent) Process(ctx context.Context, taskID string, message protocol.Message, handle taskmanager.TaskHandle) error {
	log.Infof("Received task with ID: %s", taskID)

	if err := handle.UpdateStatus(protocol.TaskState("working"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	issueKey, err := common.ExtractIssueKey(message)
	if err != nil {
		return a.failTask(handle, taskID, err)
	}

	issue, err := a.ResolveIssue(ctx, issueKey)
	if err != nil {
		return a.failTask(handle, taskID, err)
	}

	resultJSON, err := json.Marshal(issue)
	if err != nil {
		return a.failTask(handle, taskID, fmt.Errorf("failed to marshal resolved issue: %w", err))
	}

	artifact := protocol.Artifact{
		Name:        common.StringPtr("story"),
		Description: common.StringPtr(fmt.Sprintf("Resolved Jira story %s", issue.Key)),
		Parts:       []protocol.Part{protocol.NewTextPart(string(resultJSON))},
		Metadata: map[string]interface{}{
			"issueKey": issue.Key,
		},
	}
	if err := handle.AddArtifact(artifact); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}

	responseMsg := &protocol.Message{
		Parts: []protocol.Part{protocol.NewTextPart(string(resultJSON))},
	}
	if err := handle.UpdateStatus(protocol.TaskState("completed"), responseMsg); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Infof("Task %s completed for %s", taskID, issue.Key)
	return nil
}

func (a *StoryAgent) failTask(handle taskmanager.TaskHandle, taskID string, cause error) error {
	log.Errorf("Task %s failed: %v", taskID, cause)
	msg := &protocol.Message{
		Parts: []protocol.Part{protocol.NewTextPart(cause.Error())},
	}
	if err := handle.UpdateStatus(protocol.TaskState("failed"), msg); err != nil {
		log.Warnf("Failed to update status of task %s: %v", taskID, err)
	}
	return cause
}

// SetupA2AServer creates the A2A server exposing the resolve-story skill
func (a *StoryAgent) SetupA2AServer() (*server.A2AServer, error) {
	return common.SetupServer(common.SetupServerOptions{
		AgentName:    a.cfg.AgentName,
		AgentVersion: a.cfg.AgentVersion,
		AgentURL:     a.agentURL(),
		AuthType:     a.cfg.AuthType,
		JWTSecret:    a.cfg.JWTSecret,
		APIKey:       a.cfg.APIKey,
		Processor:    a,
		Skills: []server.AgentSkill{
			{
				ID:          ResolveStorySkill,
				Name:        "Resolve Jira story",
				Description: common.StringPtr("Fetches a Jira story and returns its summary, plain-text description and acceptance criteria"),
				Tags:        []string{"jira", "acceptance-criteria"},
				Examples:    []string{"PROJ-123", `{"issueKey": "PROJ-123"}`},
			},
		},
	})
}

// StartA2AServer runs srv until ctx is cancelled
func (a *StoryAgent) StartA2AServer(ctx context.Context, srv *server.A2AServer) error {
	return common.StartServer(ctx, srv, a.cfg.ServerHost, a.cfg.A2APort)
}

func (a *StoryAgent) agentURL() string {
	if a.cfg.AgentURL != "" {
		return a.cfg.AgentURL
	}
	return fmt.Sprintf("http://%s:%d", a.cfg.ServerHost, a.cfg.A2APort)
}
