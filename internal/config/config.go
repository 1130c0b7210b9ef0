// Package config loads types.Config from defaults, an optional YAML file,
// a .env file, and MEDAFFAIRS_* environment variables, in increasing order
// of precedence. Credentials left empty fall back to the secrets store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/medaffairs/internal/llm"
	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/internal/secrets"
	"github.com/pdiddy/medaffairs/pkg/types"
)

const (
	// Name is the config file base name searched for in SearchPaths.
	Name      = "medaffairs"
	EnvPrefix = "MEDAFFAIRS"
)

// Options controls where configuration is read from.
type Options struct {
	// File is an explicit config file. When empty, Name.yaml is searched
	// for in SearchPaths and a missing file is not an error.
	File string

	// SearchPaths defaults to "." and ~/.config/medaffairs.
	SearchPaths []string

	// EnvFile is loaded into the process environment if it exists.
	// Defaults to ".env".
	EnvFile string

	Secrets secrets.Store
}

var defaults = map[string]any{
	"literature.base_url":      pubmed.DefaultBaseURL,
	"literature.timeout":       60 * time.Second,
	"literature.user_agent":    "medaffairs",
	"literature.api_key":       "",
	"literature.email":         "",
	"literature.tool":          "medaffairs",
	"literature.request_delay": 350 * time.Millisecond,
	"generation.provider":      string(types.ProviderMessages),
	"generation.base_url":      llm.DefaultMessagesURL,
	"generation.model":         "",
	"generation.api_key":       "",
	"generation.timeout":       60 * time.Second,
	"generation.user_agent":    "medaffairs",
	"generation.max_tokens":    llm.DefaultMaxTokens,
	"generation.temperature":   llm.DefaultTemperature,
	"output.dir":               "output",
	"workspace.dir":            "workspace",
	"workspace.human_review":   false,
	"log.level":                "info",
	"log.format":               "text",
	"server.addr":              ":8080",
}

// Load builds the configuration. It returns the config file used, or ""
// when none was found.
func Load(opts Options) (*types.Config, string, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		for _, p := range searchPaths(opts.SearchPaths) {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("decoding config: %w", err)
	}
	applySecrets(&cfg, opts.Secrets)

	if err := Validate(&cfg); err != nil {
		return nil, "", err
	}
	return &cfg, v.ConfigFileUsed(), nil
}

func searchPaths(paths []string) []string {
	if paths != nil {
		return paths
	}
	paths = []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", Name))
	}
	return paths
}

func applySecrets(cfg *types.Config, store secrets.Store) {
	key := secrets.LLMAPIKey
	if cfg.Generation.Provider == types.ProviderGemini {
		key = secrets.GeminiAPIKey
	}
	cfg.Generation.APIKey = store.Or(cfg.Generation.APIKey, key)
	cfg.Literature.APIKey = store.Or(cfg.Literature.APIKey, secrets.NCBIAPIKey)
	cfg.Literature.Email = store.Or(cfg.Literature.Email, secrets.NCBIEmail)
}

// Validate rejects enumerated settings with unknown values. Credentials are
// not checked.
func Validate(cfg *types.Config) error {
	switch cfg.Generation.Provider {
	case types.ProviderMessages, types.ProviderGemini:
	default:
		return fmt.Errorf("generation.provider %q: use %s or %s", cfg.Generation.Provider, types.ProviderMessages, types.ProviderGemini)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: use text or json", cfg.Log.Format)
	}
	if cfg.Generation.MaxTokens <= 0 {
		return fmt.Errorf("generation.max_tokens must be positive, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Literature.RequestDelay < 0 {
		return fmt.Errorf("literature.request_delay must not be negative")
	}
	return nil
}
