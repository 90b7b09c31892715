package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuannvm/jira-story/internal/adf"
	"github.com/tuannvm/jira-story/internal/common"
	"github.com/tuannvm/jira-story/internal/eval"
	"github.com/tuannvm/jira-story/internal/models"
)

func newIssueCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "issue KEY",
		Short: "Resolve one story",
		Long: `Fetch a Jira story and print its summary, description and acceptance criteria.

Examples:
  # Print as text
  storyctl issue PROJ-123

  # Print as JSON
  storyctl issue PROJ-123 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := newAgent()
			if err != nil {
				return err
			}
			issue, err := agent.ResolveIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), issue)
			}
			printIssue(cmd.OutOrStdout(), issue)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the story as JSON")
	return cmd
}

func newIssuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issues PROJECT",
		Short: "List the stories of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := newAgent()
			if err != nil {
				return err
			}
			issues, err := agent.ResolveIssues(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", issue.Key, issue.Summary)
			}
			return nil
		},
	}
}

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the projects visible to the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := newAgent()
			if err != nil {
				return err
			}
			projects, err := agent.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Key, p.Name)
			}
			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch KEY...",
		Short: "Resolve several stories concurrently and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := newAgent()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), agent.ResolveBatch(cmd.Context(), args))
		},
	}
}

func newFlattenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flatten [file]",
		Short: "Flatten an ADF document to plain text",
		Long: `Read an Atlassian Document Format document from a file or stdin and print
its plain text. Input that is not JSON is printed trimmed.

Examples:
  storyctl flatten description.json
  cat description.json | storyctl flatten -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				content []byte
				err     error
			)
			if len(args) == 0 || args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			var doc interface{}
			if err := json.Unmarshal(content, &doc); err != nil {
				doc = string(content)
			}
			fmt.Fprintln(cmd.OutOrStdout(), adf.Flatten(doc))
			return nil
		},
	}
}

func newEvalCmd() *cobra.Command {
	var req eval.Request

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score generated output against a query and context",
		Long: `Run keyword evaluation metrics (answer_relevancy, faithfulness, hallucination)
and print the results as JSON.

Examples:
  storyctl eval --query "login" --output "TC-001 valid login"
  storyctl eval --metric faithfulness --metric hallucination --output "..." --context "AC text"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), eval.EvaluateAll(req))
		},
	}
	cmd.Flags().StringSliceVar(&req.Metrics, "metric", nil, "metric to run, may be repeated (default answer_relevancy)")
	cmd.Flags().StringVar(&req.Query, "query", "", "query the output answers")
	cmd.Flags().StringVar(&req.Output, "output", "", "generated output to score")
	cmd.Flags().StringArrayVar(&req.Context, "context", nil, "context passage, may be repeated")
	return cmd
}

func newAskCmd() *cobra.Command {
	var agentURL string

	cmd := &cobra.Command{
		Use:   "ask KEY",
		Short: "Ask a running story agent over A2A to resolve a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a2aClient, err := common.SetupA2AClient(cfg, agentURL)
			if err != nil {
				return err
			}
			text, err := common.AskForStory(cmd.Context(), a2aClient, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&agentURL, "agent", "http://localhost:8082/", "story agent A2A URL")
	return cmd
}

func printIssue(w io.Writer, issue *models.ResolvedIssue) {
	fmt.Fprintf(w, "%s: %s\n\n", issue.Key, issue.Summary)
	if issue.Description != "" {
		fmt.Fprintf(w, "Description:\n%s\n\n", issue.Description)
	}
	ac := issue.AcceptanceCriteria
	if strings.TrimSpace(ac) == "" {
		ac = "(none)"
	}
	fmt.Fprintf(w, "Acceptance Criteria:\n%s\n", ac)
}
