package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort)
	assert.Equal(t, DefaultA2APort, cfg.A2APort)
	assert.Equal(t, StoryAgentName, cfg.AgentName)
	assert.Equal(t, 30, cfg.JiraTimeout)
	assert.Equal(t, 100, cfg.JiraMaxResults)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, "", cfg.JiraACField)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("JIRA_BASE", "https://example.atlassian.net/")
	t.Setenv("JIRA_EMAIL", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "secret")
	t.Setenv("JIRA_AC_FIELD", "customfield_10034")
	t.Setenv("BATCH_CONCURRENCY", "0")

	cfg := FromViper(newViper())

	assert.Equal(t, "https://example.atlassian.net", cfg.JiraBaseURL)
	assert.Equal(t, "dev@example.com", cfg.JiraEmail)
	assert.Equal(t, "secret", cfg.JiraAPIToken)
	assert.Equal(t, "customfield_10034", cfg.JiraACField)
	assert.Equal(t, 1, cfg.BatchConcurrency)
	require.NoError(t, cfg.Validate())
}

func TestValidate_Missing(t *testing.T) {
	cfg := &Config{JiraBaseURL: "https://example.atlassian.net"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_EMAIL")
	assert.Contains(t, err.Error(), "JIRA_API_TOKEN")
	assert.NotContains(t, err.Error(), "JIRA_BASE_URL")
}

func TestReadConfigFile_Missing(t *testing.T) {
	vp := newViper()
	vp.SetConfigName("does-not-exist")
	assert.NoError(t, ReadConfigFile(vp))
}
