package config

import (
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config holds all configuration for the PR summarizer.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" toml:"server"`
	GitHub  GitHubConfig  `mapstructure:"github" toml:"github"`
	Jira    JiraConfig    `mapstructure:"jira" toml:"jira"`
	AI      AIConfig      `mapstructure:"ai" toml:"ai"`
	Store   StoreConfig   `mapstructure:"store" toml:"store"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
}

// ServerConfig holds HTTP and gRPC listener settings.
type ServerConfig struct {
	Host              string        `mapstructure:"host" toml:"host"`
	Port              int           `mapstructure:"port" toml:"port"`
	GRPCPort          int           `mapstructure:"grpc_port" toml:"grpc_port"` // 0 disables the gRPC health service
	ReadTimeout       time.Duration `mapstructure:"read_timeout" toml:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" toml:"shutdown_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins" toml:"cors_origins"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs" toml:"max_concurrent_jobs"`
	JWTSecret         string        `mapstructure:"jwt_secret" toml:"jwt_secret"` // Empty disables bearer auth
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// GRPCAddr returns the host:port for the gRPC health service.
func (s ServerConfig) GRPCAddr() string {
	return joinHostPort(s.Host, s.GRPCPort)
}

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	Token         string        `mapstructure:"token" toml:"token"`       // GITHUB_TOKEN env var takes precedence
	BaseURL       string        `mapstructure:"base_url" toml:"base_url"` // API root, e.g. for GitHub Enterprise
	ClientID      string        `mapstructure:"client_id" toml:"client_id"`
	Timeout       time.Duration `mapstructure:"timeout" toml:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries" toml:"max_retries"`
	MaxFiles      int           `mapstructure:"max_files" toml:"max_files"`
	MaxCommits    int           `mapstructure:"max_commits" toml:"max_commits"`
	MaxPatchChars int           `mapstructure:"max_patch_chars" toml:"max_patch_chars"`
}

// JiraConfig holds Jira API settings.
type JiraConfig struct {
	Enabled      bool              `mapstructure:"enabled" toml:"enabled"`
	BaseURL      string            `mapstructure:"base_url" toml:"base_url"` // e.g., "https://your-domain.atlassian.net"
	Email        string            `mapstructure:"email" toml:"email"`
	Token        string            `mapstructure:"token" toml:"token"` // JIRA_TOKEN env var takes precedence
	Timeout      time.Duration     `mapstructure:"timeout" toml:"timeout"`
	MaxRetries   int               `mapstructure:"max_retries" toml:"max_retries"`
	CustomFields map[string]string `mapstructure:"custom_fields" toml:"custom_fields"` // friendly name -> customfield_ID
}

// AIConfig holds LLM provider settings.
type AIConfig struct {
	Provider        string        `mapstructure:"provider" toml:"provider"`
	Model           string        `mapstructure:"model" toml:"model"`
	APIKey          string        `mapstructure:"api_key" toml:"api_key"` // GOOGLE_API_KEY env var takes precedence
	Temperature     float64       `mapstructure:"temperature" toml:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" toml:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// StoreConfig holds summary history settings.
type StoreConfig struct {
	Path string `mapstructure:"path" toml:"path"` // SQLite file, or ":memory:"
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	JSON  bool   `mapstructure:"json" toml:"json"`
}

// SecurityWarning describes a secret stored in the config file.
type SecurityWarning struct {
	Field   string
	Message string
}

// Supported values.
var (
	ValidProviders = []string{"gemini"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
)

// Load reads configuration from viper, applying defaults and validating.
func Load() (*Config, error) {
	config := &Config{}

	setDefaults()

	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := expandPaths(config); err != nil {
		return nil, errors.Wrap(err, "failed to expand paths")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              8000,
			GRPCPort:          0,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      120 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			CORSOrigins:       []string{"http://localhost:3000"},
			MaxConcurrentJobs: 4,
		},
		GitHub: GitHubConfig{
			Timeout:       30 * time.Second,
			MaxRetries:    3,
			MaxFiles:      20,
			MaxCommits:    10,
			MaxPatchChars: 1000,
		},
		Jira: JiraConfig{
			Enabled:      true,
			Timeout:      30 * time.Second,
			MaxRetries:   3,
			CustomFields: map[string]string{},
		},
		AI: AIConfig{
			Provider:        "gemini",
			Model:           "gemini-2.0-flash",
			Temperature:     0.3,
			MaxOutputTokens: 8192,
			Timeout:         60 * time.Second,
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir(), "summaries.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CheckSecurityWarnings returns warnings for secrets stored in the config
// file rather than supplied through the environment.
func CheckSecurityWarnings(config *Config) []SecurityWarning {
	var warnings []SecurityWarning

	if config.GitHub.Token != "" && os.Getenv("GITHUB_TOKEN") == "" && os.Getenv("PRSUM_GITHUB_TOKEN") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "github.token",
			Message: "GitHub token is set in config file. For security, use the GITHUB_TOKEN environment variable or 'pr-summarizer auth login' instead.",
		})
	}

	if config.Jira.Token != "" && os.Getenv("JIRA_TOKEN") == "" && os.Getenv("PRSUM_JIRA_TOKEN") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "jira.token",
			Message: "Jira token is set in config file. For security, use the JIRA_TOKEN environment variable instead.",
		})
	}

	if config.AI.APIKey != "" && os.Getenv("GOOGLE_API_KEY") == "" && os.Getenv("PRSUM_AI_API_KEY") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "ai.api_key",
			Message: "AI API key is set in config file. For security, use the GOOGLE_API_KEY environment variable instead.",
		})
	}

	if config.Server.JWTSecret != "" && os.Getenv("PRSUM_SERVER_JWT_SECRET") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "server.jwt_secret",
			Message: "JWT secret is set in config file. For security, use the PRSUM_SERVER_JWT_SECRET environment variable instead.",
		})
	}

	return warnings
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Newf("server.port: %d is out of range", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return errors.Newf("server.grpc_port: %d is out of range", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		return errors.New("server.grpc_port: must differ from server.port")
	}
	if c.Server.MaxConcurrentJobs < 1 {
		return errors.New("server.max_concurrent_jobs: must be at least 1")
	}
	if c.GitHub.MaxFiles < 1 || c.GitHub.MaxCommits < 1 || c.GitHub.MaxPatchChars < 1 {
		return errors.New("github: max_files, max_commits and max_patch_chars must be positive")
	}
	if c.GitHub.MaxRetries < 0 || c.Jira.MaxRetries < 0 {
		return errors.New("max_retries must not be negative")
	}
	if !slices.Contains(ValidProviders, c.AI.Provider) {
		return errors.Newf("ai.provider: unsupported provider %q (supported: %s)", c.AI.Provider, strings.Join(ValidProviders, ", "))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return errors.Newf("ai.temperature: %v must be between 0 and 2", c.AI.Temperature)
	}
	if !slices.Contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		return errors.Newf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// JiraConfigured reports whether Jira has enough settings to be queried.
func (c *Config) JiraConfigured() bool {
	return c.Jira.Enabled && c.Jira.BaseURL != "" && c.Jira.Email != ""
}

func setDefaults() {
	d := Default()

	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.grpc_port", d.Server.GRPCPort)
	viper.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	viper.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	viper.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	viper.SetDefault("server.max_concurrent_jobs", d.Server.MaxConcurrentJobs)
	viper.SetDefault("server.jwt_secret", "")

	viper.SetDefault("github.token", "")
	viper.SetDefault("github.base_url", "")
	viper.SetDefault("github.client_id", "")
	viper.SetDefault("github.timeout", d.GitHub.Timeout)
	viper.SetDefault("github.max_retries", d.GitHub.MaxRetries)
	viper.SetDefault("github.max_files", d.GitHub.MaxFiles)
	viper.SetDefault("github.max_commits", d.GitHub.MaxCommits)
	viper.SetDefault("github.max_patch_chars", d.GitHub.MaxPatchChars)

	viper.SetDefault("jira.enabled", d.Jira.Enabled)
	viper.SetDefault("jira.base_url", "")
	viper.SetDefault("jira.email", "")
	viper.SetDefault("jira.token", "")
	viper.SetDefault("jira.timeout", d.Jira.Timeout)
	viper.SetDefault("jira.max_retries", d.Jira.MaxRetries)
	viper.SetDefault("jira.custom_fields", map[string]string{})

	viper.SetDefault("ai.provider", d.AI.Provider)
	viper.SetDefault("ai.model", d.AI.Model)
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.temperature", d.AI.Temperature)
	viper.SetDefault("ai.max_output_tokens", d.AI.MaxOutputTokens)
	viper.SetDefault("ai.timeout", d.AI.Timeout)

	viper.SetDefault("store.path", d.Store.Path)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.json", false)
}

func expandPaths(config *Config) error {
	var err error
	config.Store.Path, err = expandPath(config.Store.Path)
	return err
}

func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}

func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".local", "share", "pr-summarizer")
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
