package config

import (
	"encoding/json"
	"os"
	"time"
)

// RedditConfig holds the discussion source credentials (script-app password grant).
type RedditConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	UserAgent    string `json:"user_agent"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// LLMConfig holds the generative backend settings.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// GitHubConfig holds the remote content store settings.
type GitHubConfig struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
	Token  string `json:"token,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Reddit                RedditConfig  `json:"reddit"`
	LLM                   LLMConfig     `json:"llm"`
	GitHub                *GitHubConfig `json:"github,omitempty"`
	StagingDir            string        `json:"staging_dir,omitempty"`
	ServerAddr            string        `json:"server_addr,omitempty"`
	RequestTimeoutSeconds int           `json:"request_timeout_seconds,omitempty"`
}

// Load reads JSON config from disk and applies environment overrides.
// Secrets may be left out of the file entirely and supplied via environment.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Reddit.ClientID = getEnv("REDDIT_CLIENT_ID", c.Reddit.ClientID)
	c.Reddit.ClientSecret = getEnv("REDDIT_CLIENT_SECRET", c.Reddit.ClientSecret)
	c.Reddit.UserAgent = getEnv("REDDIT_USER_AGENT", c.Reddit.UserAgent)
	c.Reddit.Username = getEnv("REDDIT_USERNAME", c.Reddit.Username)
	c.Reddit.Password = getEnv("REDDIT_PASSWORD", c.Reddit.Password)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	if c.GitHub != nil {
		c.GitHub.Token = getEnv("GITHUB_TOKEN", c.GitHub.Token)
	}
}

// Timeout returns the per-request timeout for external calls.
func (c Config) Timeout() time.Duration {
	if c.RequestTimeoutSeconds > 0 {
		return time.Duration(c.RequestTimeoutSeconds) * time.Second
	}
	return 60 * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
