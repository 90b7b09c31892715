package common

import (
	"context"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/auth"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	log "github.com/tuannvm/jira-story/internal/logging"
)

// SetupServerOptions contains options for setting up an A2A server
type SetupServerOptions struct {
	AgentName    string
	AgentVersion string
	AgentURL     string
	AuthType     string
	JWTSecret    string
	APIKey       string
	Processor    taskmanager.TaskProcessor
	Skills       []server.AgentSkill
}

// SetupServer creates and configures an A2A server with common settings
func SetupServer(opts SetupServerOptions) (*server.A2AServer, error) {
	agentCard := server.AgentCard{
		Name:        opts.AgentName,
		Description: StringPtr("Resolves Jira stories into plain-text acceptance criteria"),
		URL:         opts.AgentURL,
		Version:     opts.AgentVersion,
		Provider: &server.AgentProvider{
			Organization: "jira-story",
		},
		DefaultInputModes:  []string{"text", "data"},
		DefaultOutputModes: []string{"text"},
		Skills:             opts.Skills,
	}

	taskManager, err := taskmanager.NewMemoryTaskManager(opts.Processor)
	if err != nil {
		return nil, fmt.Errorf("failed to create task manager: %w", err)
	}

	// JSON-RPC at root so A2AClient.SendTasks posts to "/"
	serverOpts := []server.Option{
		server.WithJSONRPCEndpoint("/"),
		server.WithReadTimeout(time.Minute),
		server.WithWriteTimeout(time.Minute),
	}

	authProvider, err := NewAuthProvider(opts)
	if err != nil {
		return nil, err
	}
	if authProvider != nil {
		serverOpts = append(serverOpts, server.WithAuthProvider(authProvider))
	} else {
		log.Warnf("No authentication configured for %s, running unauthenticated", opts.AgentName)
	}

	srv, err := server.NewA2AServer(agentCard, taskManager, serverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}

// NewAuthProvider returns the provider selected by opts.AuthType, or nil when
// requests go unauthenticated.
func NewAuthProvider(opts SetupServerOptions) (auth.Provider, error) {
	switch opts.AuthType {
	case "":
		return nil, nil
	case "jwt":
		if opts.JWTSecret == "" {
			return nil, fmt.Errorf("jwt auth requires a JWT secret")
		}
		log.Infof("Configuring JWT authentication for %s", opts.AgentName)
		return auth.NewJWTAuthProvider([]byte(opts.JWTSecret), "", "", 24*time.Hour), nil
	case "apikey":
		if opts.APIKey == "" {
			log.Warnf("API key authentication selected for %s but no API key is set", opts.AgentName)
			return nil, nil
		}
		log.Infof("Configuring API key authentication for %s (API key length: %d)", opts.AgentName, len(opts.APIKey))
		return auth.NewAPIKeyAuthProvider(map[string]string{opts.APIKey: "user"}, "X-API-Key"), nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", opts.AuthType)
	}
}

// StartServer starts the A2A server and stops it when ctx is cancelled
func StartServer(ctx context.Context, srv *server.A2AServer, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting A2A server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("A2A server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Infof("Shutting down A2A server...")
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
