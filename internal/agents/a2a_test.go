package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/jira-story/internal/common"
	"github.com/tuannvm/jira-story/internal/config"
	"github.com/tuannvm/jira-story/internal/jira"
	"github.com/tuannvm/jira-story/internal/models"
	"github.com/tuannvm/jira-story/internal/story"
)

// recordingHandle is a taskmanager.TaskHandle that records status updates and artifacts
type recordingHandle struct {
	taskmanager.TaskHandle

	states    []protocol.TaskState
	messages  []*protocol.Message
	artifacts []protocol.Artifact
	statusErr error
}

func (h *recordingHandle) UpdateStatus(state protocol.TaskState, msg *protocol.Message) error {
	if h.statusErr != nil {
		return h.statusErr
	}
	h.states = append(h.states, state)
	h.messages = append(h.messages, msg)
	return nil
}

func (h *recordingHandle) AddArtifact(artifact protocol.Artifact) error {
	h.artifacts = append(h.artifacts, artifact)
	return nil
}

func textOf(t *testing.T, parts []protocol.Part) string {
	t.Helper()
	require.NotEmpty(t, parts)
	raw, err := json.Marshal(parts[0])
	require.NoError(t, err)
	var part struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(raw, &part))
	return part.Text
}

func textMessage(text string) protocol.Message {
	return protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(text)}}
}

func newLoginAgent() *StoryAgent {
	src := newFakeSource()
	src.issues["PROJ-1"] = story.NewFieldSet().
		Set("summary", "Login").
		Set("description", "Acceptance Criteria:\nUser can log in")
	return NewStoryAgent(&config.Config{JiraACField: "customfield_1"}, src)
}

func TestProcess_CompletesWithResolvedIssue(t *testing.T) {
	agent := newLoginAgent()

	for _, input := range []string{"PROJ-1", `{"issueKey": "PROJ-1"}`} {
		t.Run(input, func(t *testing.T) {
			handle := &recordingHandle{}
			require.NoError(t, agent.Process(context.Background(), "task-1", textMessage(input), handle))

			assert.Equal(t, []protocol.TaskState{"working", "completed"}, handle.states)
			require.Len(t, handle.artifacts, 1)
			assert.Equal(t, "PROJ-1", handle.artifacts[0].Metadata["issueKey"])

			var issue models.ResolvedIssue
			require.NoError(t, json.Unmarshal([]byte(textOf(t, handle.artifacts[0].Parts)), &issue))
			assert.Equal(t, "User can log in", issue.AcceptanceCriteria)

			require.NotNil(t, handle.messages[1])
			assert.JSONEq(t, textOf(t, handle.artifacts[0].Parts), textOf(t, handle.messages[1].Parts))
		})
	}
}

func TestProcess_FailsWithoutIssueKey(t *testing.T) {
	handle := &recordingHandle{}
	err := newLoginAgent().Process(context.Background(), "task-2", textMessage("please resolve something"), handle)
	require.Error(t, err)

	assert.Equal(t, []protocol.TaskState{"working", "failed"}, handle.states)
	assert.Empty(t, handle.artifacts)
	assert.Contains(t, textOf(t, handle.messages[1].Parts), "could not extract issue key")
}

func TestProcess_FailsOnTransportError(t *testing.T) {
	handle := &recordingHandle{}
	err := newLoginAgent().Process(context.Background(), "task-3", textMessage("MISSING-1"), handle)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, jira.StatusCode(err))

	assert.Equal(t, []protocol.TaskState{"working", "failed"}, handle.states)
	assert.Empty(t, handle.artifacts)
	assert.Contains(t, textOf(t, handle.messages[1].Parts), "Issue does not exist")
}

func TestProcess_StatusUpdateError(t *testing.T) {
	handle := &recordingHandle{statusErr: errors.New("task store closed")}
	err := newLoginAgent().Process(context.Background(), "task-4", textMessage("PROJ-1"), handle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task store closed")
	assert.Empty(t, handle.artifacts)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestAskForStory_RoundTrip(t *testing.T) {
	agent := newLoginAgent()
	agent.cfg.ServerHost = "127.0.0.1"
	agent.cfg.A2APort = freePort(t)
	agent.cfg.AgentName = config.StoryAgentName
	agent.cfg.AgentVersion = "test"

	srv, err := agent.SetupA2AServer()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.StartA2AServer(ctx, srv) }()
	defer func() {
		cancel()
		<-done
	}()

	a2aClient, err := common.SetupA2AClient(&config.Config{}, fmt.Sprintf("http://127.0.0.1:%d/", agent.cfg.A2APort))
	require.NoError(t, err)

	var text string
	require.Eventually(t, func() bool {
		text, err = common.AskForStory(context.Background(), a2aClient, "PROJ-1")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	var issue models.ResolvedIssue
	require.NoError(t, json.Unmarshal([]byte(text), &issue))
	assert.Equal(t, models.ResolvedIssue{
		Key:                "PROJ-1",
		Summary:            "Login",
		Description:        "Acceptance Criteria:\nUser can log in",
		AcceptanceCriteria: "User can log in",
	}, issue)
}
