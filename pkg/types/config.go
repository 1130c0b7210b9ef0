package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "medaffairs/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LiteratureConfig holds settings for the PubMed literature client.
type LiteratureConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root (e.g. "https://eutils.ncbi.nlm.nih.gov/entrez/eutils").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is an optional NCBI key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email and Tool identify the caller to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`

	// RequestDelay is the pause between successive abstract fetches.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`
}

// GenerationProvider selects the generative backend.
type GenerationProvider string

const (
	ProviderMessages GenerationProvider = "messages"
	ProviderGemini   GenerationProvider = "gemini"
)

// GenerationConfig holds settings for the generative-text client.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: messages (HTTP) or gemini (SDK).
	Provider GenerationProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// BaseURL is the root of the messages endpoint (ignored by gemini).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the default model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the bearer token. Absence is not validated before use.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens is the default maximum output length (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature is the default sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// OutputConfig holds settings for document output.
type OutputConfig struct {
	// Dir is the directory generated documents are written to.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// WorkspaceConfig holds settings for the multi-agent pipeline.
type WorkspaceConfig struct {
	// Dir is the root under which one directory per project is created.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// HumanReview records that hypotheses should be reviewed by a person.
	// The flag is stored in project state and not enforced.
	HumanReview bool `json:"human_review" yaml:"human_review" mapstructure:"human_review"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a logrus level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config groups all component configurations.
type Config struct {
	Literature LiteratureConfig `json:"literature" yaml:"literature" mapstructure:"literature"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Workspace  WorkspaceConfig  `json:"workspace" yaml:"workspace" mapstructure:"workspace"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
}
