package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/jira-story/internal/adf"
)

func mustParse(t *testing.T, raw string) *FieldSet {
	t.Helper()
	fs, err := ParseFieldSet([]byte(raw))
	require.NoError(t, err)
	return fs
}

func TestResolver_HeadingInDescriptionTree(t *testing.T) {
	fields := mustParse(t, `{
		"summary": "Login",
		"description": [
			{"type": "heading", "content": [{"type": "text", "text": "Acceptance Criteria"}]},
			{"type": "paragraph", "content": [{"type": "text", "text": "User can log in"}]}
		]
	}`)

	issue, stage := Resolver{}.ResolveWithStage("PROJ-1", fields)
	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "Login", issue.Summary)
	assert.Equal(t, "Acceptance Criteria\n\nUser can log in", issue.Description)
	assert.Equal(t, "User can log in", issue.AcceptanceCriteria)
	assert.Equal(t, StageDescription, stage)
}

func TestResolver_LinePrefixesInPlainDescription(t *testing.T) {
	fields := NewFieldSet().
		Set(FieldSummary, "API").
		Set(FieldDescription, "Do X.\nAC: must return 200\nAC: must log event\n\nOther notes")

	issue := Resolver{}.Resolve("PROJ-2", fields)
	assert.Equal(t, "AC: must return 200\nAC: must log event", issue.AcceptanceCriteria)
}

func TestResolver_DesignatedField(t *testing.T) {
	fields := NewFieldSet().
		Set(FieldSummary, "Login").
		Set(FieldDescription, "no AC here").
		Set("customfield_001", "Acceptance Criteria:\nmust validate token")

	issue, stage := Resolver{ACFieldID: "customfield_001"}.ResolveWithStage("PROJ-3", fields)
	assert.Equal(t, "must validate token", issue.AcceptanceCriteria)
	assert.Equal(t, StageDesignatedField, stage)
}

func TestResolver_DesignatedFieldKeepsEveryBlock(t *testing.T) {
	fields := NewFieldSet().
		Set(FieldSummary, "Login").
		Set("customfield_10034", []adf.Node{
			adf.Heading(adf.Text("Acceptance Criteria")),
			adf.Paragraph(adf.Text("User can log in")),
			adf.Paragraph(adf.Text("User can log out")),
		})

	issue, stage := Resolver{ACFieldID: "customfield_10034"}.ResolveWithStage("PROJ-6", fields)
	assert.Equal(t, "User can log in\n\nUser can log out", issue.AcceptanceCriteria)
	assert.Equal(t, StageDesignatedField, stage)
}

func TestStripLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "heading label", in: "Acceptance Criteria\n\nfirst\n\nsecond", want: "first\n\nsecond"},
		{name: "colon label", in: "AC:\n- one\n- two", want: "- one\n- two"},
		{name: "no label", in: "first\n\nsecond", want: "first\n\nsecond"},
		{name: "inline label kept", in: "AC: must return 200", want: "AC: must return 200"},
		{name: "word starting with ac", in: "Accept the terms\nthen continue", want: "Accept the terms\nthen continue"},
		{name: "label only", in: "Acceptance Criteria:", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripLabel(tt.in))
		})
	}
}

func TestResolver_DesignatedFieldWinsOverDescription(t *testing.T) {
	fields := NewFieldSet().
		Set(FieldDescription, "Acceptance Criteria:\nfrom description").
		Set("customfield_10034", adf.Paragraph(adf.Text("from the field")))

	issue, stage := Resolver{ACFieldID: "customfield_10034"}.ResolveWithStage("PROJ-4", fields)
	assert.Equal(t, "from the field", issue.AcceptanceCriteria)
	assert.Equal(t, StageDesignatedField, stage)
}

func TestResolver_DesignatedFieldMissingOrEmpty(t *testing.T) {
	fields := NewFieldSet().
		Set(FieldDescription, "Acceptance Criteria:\nfrom description").
		Set("customfield_null", nil).
		Set("customfield_blank", "   ")

	for _, id := range []string{"customfield_absent", "customfield_null", "customfield_blank"} {
		issue, stage := Resolver{ACFieldID: id}.ResolveWithStage("PROJ-5", fields)
		assert.Equal(t, "from description", issue.AcceptanceCriteria, id)
		assert.Equal(t, StageDescription, stage, id)
	}
}

func TestResolver_OtherFieldsInOrder(t *testing.T) {
	fields := mustParse(t, `{
		"summary": "Checkout",
		"description": "Nothing labeled here",
		"customfield_1": null,
		"customfield_2": "just notes",
		"customfield_3": ["first note", {"type": "paragraph", "content": [{"type": "text", "text": "AC: pay with card"}]}],
		"customfield_4": "AC: should not be reached"
	}`)

	issue, stage := Resolver{}.ResolveWithStage("PROJ-6", fields)
	assert.Equal(t, "AC: pay with card", issue.AcceptanceCriteria)
	assert.Equal(t, StageOtherFields, stage)
	assert.Equal(t, "Nothing labeled here", issue.Description)
}

func TestResolver_OtherFieldsTree(t *testing.T) {
	fields := mustParse(t, `{
		"description": null,
		"customfield_9": {"type": "doc", "content": [
			{"type": "heading", "content": [{"type": "text", "text": "Acceptance Criteria"}]},
			{"type": "paragraph", "content": [{"type": "text", "text": "Export works"}]}
		]}
	}`)

	issue := Resolver{}.Resolve("PROJ-7", fields)
	assert.Equal(t, "Export works", issue.AcceptanceCriteria)
	assert.Equal(t, "", issue.Summary)
	assert.Equal(t, "", issue.Description)
}

func TestResolver_FallbackToDescription(t *testing.T) {
	fields := NewFieldSet().Set(FieldDescription, "Plain text only")

	issue, stage := Resolver{}.ResolveWithStage("PROJ-8", fields)
	assert.Equal(t, "Plain text only", issue.AcceptanceCriteria)
	assert.Equal(t, StageFallback, stage)
}

func TestResolver_FallbackEmpty(t *testing.T) {
	issue, stage := Resolver{ACFieldID: "customfield_1"}.ResolveWithStage("PROJ-9", NewFieldSet())
	assert.Equal(t, "", issue.Description)
	assert.Equal(t, "", issue.AcceptanceCriteria)
	assert.Equal(t, StageFallback, stage)

	issue = Resolver{}.Resolve("PROJ-10", nil)
	assert.Equal(t, "", issue.AcceptanceCriteria)
}

func TestResolver_DoesNotMutateFields(t *testing.T) {
	fields := NewFieldSet().
		Set(FieldSummary, "S").
		Set(FieldDescription, "D").
		Set("customfield_1", []interface{}{"AC: x"})

	before := fields.Keys()
	_ = Resolver{ACFieldID: "customfield_1"}.Resolve("PROJ-11", fields)
	assert.Equal(t, before, fields.Keys())
	v, _ := fields.Get("customfield_1")
	assert.Equal(t, []interface{}{"AC: x"}, v)
}

func TestFieldText(t *testing.T) {
	assert.Equal(t, "", FieldText(nil))
	assert.Equal(t, " raw ", FieldText(" raw "))
	assert.Equal(t, "a\nb", FieldText([]interface{}{"a", adf.Text("b")}))
	assert.Equal(t, "a\nb", FieldText([]string{"a", "b"}))
	assert.Equal(t, "", FieldText(12.5))
}
