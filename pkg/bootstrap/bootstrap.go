package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// LocalConfigName is the per-directory config file merged over the user config.
const LocalConfigName = ".pr-summarizer.toml"

var (
	lastLoadedConfig  string
	lastLoadedVerbose bool
	loadedConfig      *config.Config
)

// envAliases maps config keys to the unprefixed variables commonly exported
// by other tooling. The PRSUM_ form is always checked first.
var envAliases = map[string][]string{
	"github.token":  {"GITHUB_TOKEN"},
	"jira.token":    {"JIRA_TOKEN", "JIRA_API_TOKEN"},
	"jira.base_url": {"JIRA_URL", "JIRA_BASE_URL"},
	"jira.email":    {"JIRA_EMAIL"},
	"ai.api_key":    {"GOOGLE_API_KEY", "GOOGLE_GENAI_API_KEY", "GEMINI_API_KEY"},
	"server.port":   {"PORT"},
	"server.host":   {"HOST"},
}

// DefaultConfigDir returns ~/.config/pr-summarizer.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".config", "pr-summarizer"), nil
}

// DefaultConfigPath returns the path of the user config file.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// InitConfig reads in the config file, .env and environment variables.
// It returns the loaded config and the verbosity state.
func InitConfig(cfgFile string, verbose bool) (*config.Config, bool, error) {
	return initConfig(cfgFile, verbose, os.Stderr)
}

func initConfig(cfgFile string, verbose bool, stderr io.Writer) (*config.Config, bool, error) {
	if os.Getenv("GO_TEST") != "true" && loadedConfig != nil && cfgFile == lastLoadedConfig && verbose == lastLoadedVerbose {
		return loadedConfig, verbose, nil
	}

	viper.Reset()

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) && verbose {
		fmt.Fprintf(stderr, "Warning: could not read .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, verbose, err
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PRSUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := bindEnvAliases(); err != nil {
		return nil, verbose, err
	}

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		return nil, verbose, prserrors.NewConfigErrorWithCause("", "failed to read config file "+cfgFile, err)
	}

	LoadLocalConfig(verbose, stderr)

	cfg, err := config.Load()
	if err != nil {
		return nil, verbose, err
	}

	for _, w := range config.CheckSecurityWarnings(cfg) {
		fmt.Fprintf(stderr, "Warning: %s\n", w.Message)
	}

	lastLoadedConfig = cfgFile
	lastLoadedVerbose = verbose
	loadedConfig = cfg

	return cfg, verbose, nil
}

func bindEnvAliases() error {
	for key, aliases := range envAliases {
		prefixed := "PRSUM_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		names := append([]string{key, prefixed}, aliases...)
		if err := viper.BindEnv(names...); err != nil {
			return errors.Wrapf(err, "failed to bind environment for %s", key)
		}
	}
	return nil
}

// LoadLocalConfig merges .pr-summarizer.toml from the working directory, if present.
func LoadLocalConfig(verbose bool, stderr io.Writer) {
	if _, err := os.Stat(LocalConfigName); err != nil {
		return
	}

	localViper := viper.New()
	localViper.SetConfigFile(LocalConfigName)
	if err := localViper.ReadInConfig(); err != nil {
		if verbose {
			fmt.Fprintf(stderr, "Warning: could not read local config %s: %v\n", LocalConfigName, err)
		}
		return
	}

	if verbose {
		fmt.Fprintf(stderr, "Using local config: %s\n", LocalConfigName)
	}

	if err := viper.MergeConfigMap(localViper.AllSettings()); err != nil && verbose {
		fmt.Fprintf(stderr, "Warning: could not merge local config: %v\n", err)
	}
}

// Reset clears the cached configuration state.
func Reset() {
	lastLoadedConfig = ""
	lastLoadedVerbose = false
	loadedConfig = nil
}
