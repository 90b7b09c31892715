package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	// StoryAgentName is the A2A agent name advertised by storyserver
	StoryAgentName = "JiraStoryAgent"
	// DefaultServerPort is the REST API port
	DefaultServerPort = 8081
	// DefaultA2APort is the A2A JSON-RPC port
	DefaultA2APort = 8082
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort int

	// Agent configuration
	A2AEnabled   bool
	A2APort      int
	AgentName    string
	AgentVersion string
	AgentURL     string

	// Authentication for the A2A endpoint
	AuthType  string // "jwt", "apikey" or ""
	JWTSecret string
	APIKey    string

	// Jira configuration
	JiraBaseURL    string
	JiraEmail      string
	JiraAPIToken   string
	JiraACField    string // explicit acceptance criteria field id, skips discovery
	JiraTimeout    int    // in seconds
	JiraMaxResults int

	BatchConcurrency int

	// LLM configuration
	LLMEnabled     bool
	LLMProvider    string // "openai", "azure"
	LLMModel       string
	LLMAPIKey      string
	LLMServiceURL  string
	LLMMaxTokens   int
	LLMTimeout     int // in seconds
	LLMTemperature float64

	LogLevel string
}

var (
	v    *viper.Viper
	once sync.Once
)

// GetViper returns the process-wide viper instance with defaults applied.
func GetViper() *viper.Viper {
	once.Do(func() {
		v = newViper()
	})
	return v
}

func newViper() *viper.Viper {
	vp := viper.New()

	vp.SetConfigName("storyserver")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.AddConfigPath("$HOME/.jira-story")

	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vp.AutomaticEnv()
	// The web tooling historically used JIRA_BASE / JIRA_URL
	_ = vp.BindEnv("jira_base_url", "JIRA_BASE_URL", "JIRA_BASE", "JIRA_URL")
	_ = vp.BindEnv("jira_email", "JIRA_EMAIL", "JIRA_USERNAME")

	vp.SetDefault("server_host", "localhost")
	vp.SetDefault("server_port", DefaultServerPort)
	vp.SetDefault("a2a_enabled", false)
	vp.SetDefault("a2a_port", DefaultA2APort)
	vp.SetDefault("agent_name", StoryAgentName)
	vp.SetDefault("agent_version", "1.0.0")
	vp.SetDefault("agent_url", "")
	vp.SetDefault("auth_type", "apikey")
	vp.SetDefault("jwt_secret", "")
	vp.SetDefault("api_key", "")
	vp.SetDefault("jira_base_url", "")
	vp.SetDefault("jira_email", "")
	vp.SetDefault("jira_api_token", "")
	vp.SetDefault("jira_ac_field", "")
	vp.SetDefault("jira_timeout", 30)
	vp.SetDefault("jira_max_results", 100)
	vp.SetDefault("batch_concurrency", 4)
	vp.SetDefault("llm_enabled", false)
	vp.SetDefault("llm_provider", "openai")
	vp.SetDefault("llm_model", "gpt-4")
	vp.SetDefault("llm_api_key", "")
	vp.SetDefault("llm_service_url", "")
	vp.SetDefault("llm_max_tokens", 4000)
	vp.SetDefault("llm_timeout", 60)
	vp.SetDefault("llm_temperature", 0.2)
	vp.SetDefault("log_level", "info")

	return vp
}

// ReadConfigFile loads storyserver.yaml when one exists. A missing file is not an error.
func ReadConfigFile(vp *viper.Viper) error {
	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// NewConfig creates a new configuration from the process-wide viper instance
func NewConfig() *Config {
	return FromViper(GetViper())
}

// FromViper builds a Config from the given viper instance
func FromViper(vp *viper.Viper) *Config {
	cfg := &Config{
		ServerHost: vp.GetString("server_host"),
		ServerPort: vp.GetInt("server_port"),

		A2AEnabled:   vp.GetBool("a2a_enabled"),
		A2APort:      vp.GetInt("a2a_port"),
		AgentName:    vp.GetString("agent_name"),
		AgentVersion: vp.GetString("agent_version"),
		AgentURL:     vp.GetString("agent_url"),

		AuthType:  vp.GetString("auth_type"),
		JWTSecret: vp.GetString("jwt_secret"),
		APIKey:    vp.GetString("api_key"),

		JiraBaseURL:    strings.TrimRight(vp.GetString("jira_base_url"), "/"),
		JiraEmail:      vp.GetString("jira_email"),
		JiraAPIToken:   vp.GetString("jira_api_token"),
		JiraACField:    vp.GetString("jira_ac_field"),
		JiraTimeout:    vp.GetInt("jira_timeout"),
		JiraMaxResults: vp.GetInt("jira_max_results"),

		BatchConcurrency: vp.GetInt("batch_concurrency"),

		LLMEnabled:     vp.GetBool("llm_enabled"),
		LLMProvider:    vp.GetString("llm_provider"),
		LLMModel:       vp.GetString("llm_model"),
		LLMAPIKey:      vp.GetString("llm_api_key"),
		LLMServiceURL:  vp.GetString("llm_service_url"),
		LLMMaxTokens:   vp.GetInt("llm_max_tokens"),
		LLMTimeout:     vp.GetInt("llm_timeout"),
		LLMTemperature: vp.GetFloat64("llm_temperature"),

		LogLevel: vp.GetString("log_level"),
	}
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}
	return cfg
}

// Validate reports missing Jira connection settings
func (c *Config) Validate() error {
	var missing []string
	if c.JiraBaseURL == "" {
		missing = append(missing, "JIRA_BASE_URL")
	}
	if c.JiraEmail == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if c.JiraAPIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if len(missing) > 0 {
		return errors.New(strings.Join(missing, ", ") + " must be set")
	}
	return nil
}
