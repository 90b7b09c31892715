// Package story turns the raw fields of a Jira issue into a ResolvedIssue:
// summary, flattened description and acceptance criteria.
//
// Acceptance criteria are looked up in stages, each tried only when the
// previous one found nothing:
//
//	A. the designated acceptance criteria field, when one is known
//	B. a labeled section inside the description
//	C. a labeled section inside any other field, in field order
//	D. the description itself
package story

import (
	"strings"

	"github.com/tuannvm/jira-story/internal/adf"
	"github.com/tuannvm/jira-story/internal/models"
)

// Stage names the step that produced the acceptance criteria.
type Stage string

const (
	StageDesignatedField Stage = "designated_field"
	StageDescription     Stage = "description_section"
	StageOtherFields     Stage = "other_fields"
	StageFallback        Stage = "fallback"
)

// Finder is one acceptance criteria lookup. It returns "" when it finds nothing.
type Finder func(fields *FieldSet, description string) string

// Resolver resolves issues. ACFieldID is the optional id of the field that
// holds acceptance criteria.
type Resolver struct {
	ACFieldID string
}

// Resolve builds the ResolvedIssue for key from fields. fields is not modified.
func (r Resolver) Resolve(key string, fields *FieldSet) models.ResolvedIssue {
	issue, _ := r.ResolveWithStage(key, fields)
	return issue
}

// ResolveWithStage is Resolve, also reporting which stage supplied the
// acceptance criteria.
func (r Resolver) ResolveWithStage(key string, fields *FieldSet) (models.ResolvedIssue, Stage) {
	raw, _ := fields.Get(FieldDescription)
	description := adf.Flatten(raw)
	criteria, stage := r.AcceptanceCriteria(fields, description)

	return models.ResolvedIssue{
		Key:                key,
		Summary:            fields.String(FieldSummary),
		Description:        description,
		AcceptanceCriteria: criteria,
	}, stage
}

// AcceptanceCriteria runs the lookup stages against fields and the already
// flattened description.
func (r Resolver) AcceptanceCriteria(fields *FieldSet, description string) (string, Stage) {
	stages := []struct {
		stage Stage
		find  Finder
	}{
		{StageDesignatedField, DesignatedField(r.ACFieldID)},
		{StageDescription, DescriptionSection},
		{StageOtherFields, OtherFields},
	}
	for _, s := range stages {
		if text := s.find(fields, description); text != "" {
			return text, s.stage
		}
	}
	return description, StageFallback
}

// DesignatedField reads acceptance criteria from the field with the given id.
// The whole flattened field is returned, minus a leading "Acceptance
// Criteria" or "AC" label line.
func DesignatedField(id string) Finder {
	return func(fields *FieldSet, _ string) string {
		if id == "" {
			return ""
		}
		value, ok := fields.Get(id)
		if !ok || value == nil {
			return ""
		}
		return stripLabel(adf.Flatten(value))
	}
}

// DescriptionSection extracts a labeled section from the description.
func DescriptionSection(_ *FieldSet, description string) string {
	return ExtractAcceptanceCriteria(description)
}

// OtherFields scans every field except summary and description, in order,
// and returns the first labeled section found.
func OtherFields(fields *FieldSet, _ string) string {
	for _, id := range fields.Keys() {
		if id == FieldSummary || id == FieldDescription {
			continue
		}
		value, _ := fields.Get(id)
		if value == nil {
			continue
		}
		if found := ExtractAcceptanceCriteria(FieldText(value)); found != "" {
			return found
		}
	}
	return ""
}

// FieldText renders any field value as text. Strings are used as is, lists
// are rendered element by element and joined with newlines, and anything
// else is flattened as a document tree.
func FieldText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
				continue
			}
			parts = append(parts, adf.Flatten(item))
		}
		return strings.Join(parts, "\n")
	case []string:
		return strings.Join(v, "\n")
	default:
		return adf.Flatten(v)
	}
}
