package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	log "github.com/tuannvm/jira-story/internal/logging"
)

// ExtractIssueKey finds the issue key carried by an A2A message. A text part
// may hold the bare key or a JSON object with an issue key; a data part may
// hold the same object.
func ExtractIssueKey(message protocol.Message) (string, error) {
	if len(message.Parts) == 0 {
		return "", fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		if dp, ok := part.(*protocol.DataPart); ok && dp != nil {
			raw, err := json.Marshal(dp.Data)
			if err != nil {
				log.Debugf("Failed to marshal DataPart.Data: %v", err)
				continue
			}
			if key, ok := issueKeyFromJSON(raw); ok {
				return key, nil
			}
			continue
		}

		if key, ok := issueKeyFromText(partText(part)); ok {
			return key, nil
		}
	}

	return "", fmt.Errorf("could not extract issue key from message")
}

// partText returns the text of a text part, whether it arrives as a
// pointer or as a value.
func partText(part protocol.Part) string {
	if tp, ok := part.(*protocol.TextPart); ok && tp != nil {
		return tp.Text
	}
	raw, err := json.Marshal(part)
	if err != nil {
		return ""
	}
	var typed struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &typed); err != nil || typed.Type != "text" {
		return ""
	}
	return typed.Text
}

func issueKeyFromText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if strings.HasPrefix(text, "{") {
		return issueKeyFromJSON([]byte(text))
	}
	if strings.ContainsAny(text, " \t\n") {
		return "", false
	}
	return text, true
}

func issueKeyFromJSON(raw []byte) (string, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", false
	}
	return GetStringValue(data, "issueKey", "issue_key", "key", "ticketId")
}
