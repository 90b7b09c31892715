package common

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/client"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/jira-story/internal/config"
	log "github.com/tuannvm/jira-story/internal/logging"
)

// SetupA2AClient creates an A2A client for targetURL using the configured authentication
func SetupA2AClient(cfg *config.Config, targetURL string) (*client.A2AClient, error) {
	var opts []client.Option
	switch cfg.AuthType {
	case "apikey":
		if cfg.APIKey != "" {
			log.Debugf("Using API key authentication for A2A client (API key length: %d)", len(cfg.APIKey))
			opts = append(opts, client.WithAPIKeyAuth(cfg.APIKey, "X-API-Key"))
		}
	case "jwt":
		log.Warnf("JWT authentication is not supported by the A2A client, sending unauthenticated requests")
	}

	a2aClient, err := client.NewA2AClient(targetURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create A2A client: %w", err)
	}
	return a2aClient, nil
}

// AskForStory sends an issue key to a story agent and returns the text of the
// produced artifacts.
func AskForStory(ctx context.Context, a2aClient *client.A2AClient, issueKey string) (string, error) {
	params := protocol.SendTaskParams{
		Message: protocol.Message{
			Parts: []protocol.Part{protocol.NewTextPart(issueKey)},
		},
	}
	msg, err := SendTask(ctx, a2aClient, params)
	if err != nil {
		return "", err
	}
	for _, part := range msg.Parts {
		if text := partText(part); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("agent returned no story for %s", issueKey)
}

// SendTask synchronously sends a task via JSON-RPC and returns the consolidated Message.
func SendTask(ctx context.Context, a2aClient *client.A2AClient, params protocol.SendTaskParams) (protocol.Message, error) {
	task, err := a2aClient.SendTasks(ctx, params)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("SendTasks RPC failed: %w", err)
	}
	var parts []protocol.Part
	for _, art := range task.Artifacts {
		parts = append(parts, art.Parts...)
	}
	return protocol.Message{Parts: parts}, nil
}
