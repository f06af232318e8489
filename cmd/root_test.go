package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

func TestRootCommandStructure(t *testing.T) {
	// Not parallel - accesses global rootCmd
	cmd := rootCmd

	if cmd.Use != "pr-summarizer" {
		t.Errorf("root command Use = %q, want %q", cmd.Use, "pr-summarizer")
	}
	if cmd.Short == "" {
		t.Error("root command should have Short description")
	}

	for _, keyword := range []string{"GitHub", "Jira", "Gemini", "serve", "summarize"} {
		if !strings.Contains(cmd.Long, keyword) {
			t.Errorf("root command Long description should mention %q", keyword)
		}
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	cmd := rootCmd

	configFlag := cmd.PersistentFlags().Lookup("config")
	if configFlag == nil {
		t.Fatal("root command should have --config persistent flag")
	}
	if configFlag.Shorthand != "C" {
		t.Errorf("--config shorthand = %q, want C", configFlag.Shorthand)
	}
	if !strings.Contains(configFlag.Usage, "$HOME/.config/pr-summarizer") {
		t.Error("--config usage should mention default config location")
	}

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	if verboseFlag == nil {
		t.Fatal("root command should have --verbose persistent flag")
	}
	if verboseFlag.DefValue != "false" {
		t.Errorf("--verbose default should be 'false', got %q", verboseFlag.DefValue)
	}
	if verboseFlag.Shorthand != "v" {
		t.Errorf("--verbose shorthand should be 'v', got %q", verboseFlag.Shorthand)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	registered := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		registered[strings.Split(sub.Use, " ")[0]] = true
	}

	for _, expected := range []string{"serve", "summarize", "auth", "config", "version"} {
		if !registered[expected] {
			t.Errorf("root command should have %q subcommand registered", expected)
		}
	}
}

func TestInitConfig_WithCustomConfigFile(t *testing.T) {
	// Don't run in parallel - modifies global viper state
	resetConfig()
	t.Cleanup(resetConfig)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `[server]
port = 9100

[jira]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write custom config: %v", err)
	}

	oldCfgFile := cfgFile
	cfgFile = path
	defer func() { cfgFile = oldCfgFile }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Jira.Enabled {
		t.Error("Jira.Enabled should be false")
	}
	if viper.GetInt("server.port") != 9100 {
		t.Errorf("viper server.port = %d, want 9100", viper.GetInt("server.port"))
	}
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)

	oldCfgFile := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "missing.toml")
	defer func() { cfgFile = oldCfgFile }()

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() should fail when --config names a missing file")
	}
}

func TestInitConfig_NoConfigFile(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	oldCfgFile := cfgFile
	cfgFile = ""
	defer func() { cfgFile = oldCfgFile }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestNewLogger_VerboseForcesDebug(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Chdir(t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	old := verbose
	defer func() { verbose = old }()

	verbose = false
	if newLogger(cfg).Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug should be disabled at the default level")
	}
	verbose = true
	if !newLogger(cfg).Enabled(t.Context(), slog.LevelDebug) {
		t.Error("--verbose should enable debug logging")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config error", prserrors.NewConfigError("ai.api_key", "not set"), 2},
		{"wrapped config error", prserrors.Wrap(prserrors.NewConfigErrorWithCause("", "unreadable", os.ErrNotExist), "load"), 2},
		{"github error", prserrors.NewGitHubError("FetchPR", "not found"), 1},
		{"plain error", prserrors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
