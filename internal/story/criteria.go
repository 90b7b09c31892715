package story

import (
	"regexp"
	"strings"

	"github.com/tuannvm/jira-story/internal/models"
)

var (
	// A label line ("Acceptance Criteria", "AC:") followed by its block,
	// which runs to the next blank line or the end of the text.
	headingSection = regexp.MustCompile(`(?i)(?:acceptance criteria|\bAC[:\s])\s*[:\-]?\s*\n([\s\S]*?)(?:\n\s*\n|$)`)

	// A first line holding nothing but the label.
	labelLine = regexp.MustCompile(`(?i)^\s*(?:acceptance criteria|AC)[ \t]*[:\-]?[ \t]*(?:\n|$)`)

	criteriaLine = regexp.MustCompile(`(?i)^(?:AC[:\s\-]|Acceptance Criteria[:\s\-])`)
	criteriaItem = regexp.MustCompile(`(?i)^-\s*AC\b`)
)

// ExtractAcceptanceCriteria finds a labeled acceptance criteria section in
// text. A heading-style section wins; otherwise every line starting with an
// AC marker is collected in order. It returns "" when nothing is found.
func ExtractAcceptanceCriteria(text string) string {
	if section := extractSection(text); section != "" {
		return section
	}
	return extractLines(text)
}

func extractSection(text string) string {
	if text == "" {
		return ""
	}
	m := headingSection.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// stripLabel drops a leading label line and keeps everything after it.
func stripLabel(text string) string {
	if loc := labelLine.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

func extractLines(text string) string {
	if text == "" {
		return ""
	}
	var matched []string
	for _, line := range strings.Split(text, "\n") {
		candidate := strings.TrimRight(line, "\r")
		if criteriaLine.MatchString(candidate) || criteriaItem.MatchString(candidate) {
			matched = append(matched, candidate)
		}
	}
	return strings.TrimSpace(strings.Join(matched, "\n"))
}

// DiscoverAcceptanceField picks the first field whose display name mentions
// "acceptance". It returns "" when no field qualifies.
func DiscoverAcceptanceField(fields []models.FieldMeta) string {
	for _, f := range fields {
		if f.ID == "" {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name), "acceptance") {
			return f.ID
		}
	}
	return ""
}
