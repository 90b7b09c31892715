// Package main implements storyctl, a command-line client for resolving Jira
// stories into plain-text acceptance criteria.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tuannvm/jira-story/internal/agents"
	"github.com/tuannvm/jira-story/internal/config"
	"github.com/tuannvm/jira-story/internal/jira"
	log "github.com/tuannvm/jira-story/internal/logging"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "storyctl",
		Short: "Resolve Jira stories into plain-text acceptance criteria",
		Long: `storyctl fetches Jira stories and prints their summary, description and
acceptance criteria as plain text. Jira credentials are read from
JIRA_BASE_URL, JIRA_EMAIL and JIRA_API_TOKEN or from storyserver.yaml.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			return log.SetLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newIssueCmd(),
		newIssuesCmd(),
		newProjectsCmd(),
		newBatchCmd(),
		newFlattenCmd(),
		newEvalCmd(),
		newAskCmd(),
	)
	return root
}

// loadConfig reads storyserver.yaml and the environment
func loadConfig() (*config.Config, error) {
	if err := config.ReadConfigFile(config.GetViper()); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return config.NewConfig(), nil
}

// newAgent builds a StoryAgent talking to Jira directly
func newAgent() (*agents.StoryAgent, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	source, err := jira.NewAtlassianClient(cfg)
	if err != nil {
		return nil, err
	}
	return agents.NewStoryAgent(cfg, source), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
