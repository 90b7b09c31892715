// Package adf renders Atlassian Document Format trees as plain text.
package adf

import (
	"encoding/json"
	"regexp"
	"strings"

	log "github.com/tuannvm/jira-story/internal/logging"
)

// Node types that affect rendering. Every other type only contributes
// the text of its content.
const (
	TypeText      = "text"
	TypeParagraph = "paragraph"
	TypeHeading   = "heading"
	TypeListItem  = "listItem"
	TypeDoc       = "doc"
)

// Node is a typed document node, used when building trees in code.
// Trees decoded from Jira responses usually arrive as map[string]interface{}
// and are handled by Flatten directly.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// UnmarshalJSON accepts content given either as a single node or as a list.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    string          `json:"type"`
		Text    string          `json:"text"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Type = raw.Type
	n.Text = raw.Text
	n.Content = nil

	content := strings.TrimSpace(string(raw.Content))
	switch {
	case content == "" || content == "null":
	case strings.HasPrefix(content, "["):
		if err := json.Unmarshal(raw.Content, &n.Content); err != nil {
			return err
		}
	default:
		var child Node
		if err := json.Unmarshal(raw.Content, &child); err != nil {
			return err
		}
		n.Content = []Node{child}
	}
	return nil
}

// Text builds a text leaf.
func Text(s string) Node { return Node{Type: TypeText, Text: s} }

// Paragraph builds a paragraph around the given children.
func Paragraph(children ...Node) Node { return Node{Type: TypeParagraph, Content: children} }

// Heading builds a heading around the given children.
func Heading(children ...Node) Node { return Node{Type: TypeHeading, Content: children} }

// ListItem builds a list item around the given children.
func ListItem(children ...Node) Node { return Node{Type: TypeListItem, Content: children} }

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Flatten renders v as plain text.
//
// v may be nil, a string, a Node, a decoded JSON value (map or slice) or a
// slice of either. Strings are returned trimmed without further processing.
// Malformed input never panics out of Flatten; it yields an empty string.
func Flatten(v interface{}) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("adf: flatten failed, returning empty text: %v", r)
			out = ""
		}
	}()

	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	}

	var b strings.Builder
	render(&b, v)
	return strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), "\n\n"))
}

func render(b *strings.Builder, v interface{}) {
	switch n := v.(type) {
	case nil:
	case []interface{}:
		for _, child := range n {
			render(b, child)
		}
	case []map[string]interface{}:
		for _, child := range n {
			render(b, child)
		}
	case []Node:
		for i := range n {
			render(b, &n[i])
		}
	case map[string]interface{}:
		typ, _ := n["type"].(string)
		if typ == TypeText {
			if text, ok := n["text"].(string); ok {
				b.WriteString(text)
			}
		}
		if content, ok := n["content"]; ok {
			render(b, content)
		}
		separate(b, typ)
	case Node:
		render(b, &n)
	case *Node:
		if n == nil {
			return
		}
		if n.Type == TypeText {
			b.WriteString(n.Text)
		}
		if len(n.Content) > 0 {
			render(b, n.Content)
		}
		separate(b, n.Type)
	}
}

func separate(b *strings.Builder, typ string) {
	switch typ {
	case TypeParagraph, TypeHeading:
		b.WriteString("\n\n")
	case TypeListItem:
		b.WriteString("\n")
	}
}
