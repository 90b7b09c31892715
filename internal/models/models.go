package models

// ResolvedIssue is the plain-text view of a Jira story. Description and
// AcceptanceCriteria are always flattened text. AcceptanceCriteria is always
// set and falls back to Description when no criteria are found.
type ResolvedIssue struct {
	Key                string `json:"key"`
	Summary            string `json:"summary"`
	Description        string `json:"description"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
}

// IssueSummary is the lightweight listing entry for a project's stories.
type IssueSummary struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

// Project represents a Jira project
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// FieldMeta is one entry of the Jira field catalogue.
type FieldMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BatchResult holds the outcome of resolving one issue in a batch.
type BatchResult struct {
	Key   string         `json:"key"`
	Issue *ResolvedIssue `json:"issue,omitempty"`
	Error string         `json:"error,omitempty"`
}

// GenerateRequest is the story data sent to the test case generator.
type GenerateRequest struct {
	StoryTitle         string `json:"storyTitle"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	Description        string `json:"description,omitempty"`
	AdditionalInfo     string `json:"additionalInfo,omitempty"`
}

// TestCase is a single generated test case
type TestCase struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	ExpectedResult string   `json:"expectedResult"`
	Steps          []string `json:"steps"`
	TestData       string   `json:"testData,omitempty"`
}

// GenerateResponse is returned by the test case generator.
type GenerateResponse struct {
	Cases []TestCase `json:"cases"`
	Model string     `json:"model,omitempty"`
}
