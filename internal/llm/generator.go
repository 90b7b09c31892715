package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tuannvm/jira-story/internal/common"
	log "github.com/tuannvm/jira-story/internal/logging"
	"github.com/tuannvm/jira-story/internal/models"
)

// ErrInvalidRequest is returned when a generate request lacks required data
var ErrInvalidRequest = errors.New("storyTitle and acceptanceCriteria are required")

// Generator writes test cases for a story with an LLM
type Generator struct {
	client LLMClient
}

// NewGenerator creates a Generator backed by client
func NewGenerator(client LLMClient) *Generator {
	return &Generator{client: client}
}

// Generate asks the LLM for test cases covering the story's acceptance criteria
func (g *Generator) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	if strings.TrimSpace(req.StoryTitle) == "" || strings.TrimSpace(req.AcceptanceCriteria) == "" {
		return nil, ErrInvalidRequest
	}

	completion, err := g.client.Complete(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}

	cases, err := parseCases(completion)
	if err != nil {
		log.Warnf("Unparseable test cases for %q: %v", req.StoryTitle, err)
		return nil, err
	}
	return &models.GenerateResponse{Cases: cases, Model: g.client.Model()}, nil
}

func buildPrompt(req models.GenerateRequest) string {
	var b strings.Builder
	b.WriteString("You are a senior QA engineer. Write test cases for the user story below.\n")
	b.WriteString("Cover every acceptance criterion with at least one positive case, and add negative and edge cases.\n\n")
	fmt.Fprintf(&b, "Story: %s\n\n", req.StoryTitle)
	fmt.Fprintf(&b, "Acceptance Criteria:\n%s\n\n", req.AcceptanceCriteria)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description:\n%s\n\n", req.Description)
	}
	if req.AdditionalInfo != "" {
		fmt.Fprintf(&b, "Additional information:\n%s\n\n", req.AdditionalInfo)
	}
	b.WriteString(`Respond with a JSON array only. Each element must have the fields ` +
		`"id" (TC-001, TC-002, ...), "title", "category" (Positive, Negative, Edge or Authorization), ` +
		`"expectedResult", "steps" (array of strings) and "testData".`)
	return b.String()
}

func parseCases(completion string) ([]models.TestCase, error) {
	raw, err := common.ExtractJSON(completion)
	if err != nil {
		return nil, err
	}

	var cases []models.TestCase
	if err := json.Unmarshal([]byte(raw), &cases); err != nil {
		var wrapped struct {
			Cases []models.TestCase `json:"cases"`
		}
		if werr := json.Unmarshal([]byte(raw), &wrapped); werr != nil {
			return nil, fmt.Errorf("failed to decode test cases: %w", err)
		}
		cases = wrapped.Cases
	}

	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = fmt.Sprintf("TC-%03d", i+1)
		}
		if cases[i].Steps == nil {
			cases[i].Steps = []string{}
		}
	}
	return cases, nil
}
