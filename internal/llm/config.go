package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	// TaskAnswer answers a user question from an assembled context prompt.
	TaskAnswer TaskType = "answer"
)

// Provider selects the LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled      bool
	LogCalls     bool
	Provider     Provider
	APIKey       string
	BaseURL      string // empty uses the provider's public endpoint
	Model        string
	SystemPrompt string
	TimeoutMs    int
	MaxRetries   int
	RateLimit    float64 // requests per second; 0 disables limiting
	Tasks        map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig for OpenAI gpt-4o.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:      true,
		LogCalls:     false,
		Provider:     ProviderOpenAI,
		Model:        "gpt-4o",
		SystemPrompt: "You are a helpful assistant.",
		TimeoutMs:    30000,
		MaxRetries:   1,
		RateLimit:    2,
		Tasks: map[TaskType]TaskConfig{
			TaskAnswer: {Temperature: 0.5, MaxTokens: 700, TimeoutMs: 30000},
		},
	}
}

// defaultModels is used when SPOT_LLM_MODEL is unset and the provider changes.
var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("SPOT_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SPOT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SPOT_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(v))
		cfg.Model = defaultModels[cfg.Provider]
	}
	if v := os.Getenv("SPOT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SPOT_LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SPOT_LLM_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}
	if v := os.Getenv("SPOT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("SPOT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("SPOT_LLM_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RateLimit = f
		}
	}

	cfg.APIKey = os.Getenv("SPOT_LLM_API_KEY")
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case ProviderOpenAI:
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case ProviderAnthropic:
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskAnswer, "SPOT_LLM_ANSWER_TIMEOUT_MS")
	applyTaskFloatEnv(&cfg, TaskAnswer, "SPOT_LLM_ANSWER_TEMPERATURE")
	applyTaskMaxTokensEnv(&cfg, TaskAnswer, "SPOT_LLM_ANSWER_MAX_TOKENS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}

func applyTaskFloatEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 2 {
		return
	}
	tc := cfg.Tasks[task]
	tc.Temperature = f
	cfg.Tasks[task] = tc
}

func applyTaskMaxTokensEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.MaxTokens = n
	cfg.Tasks[task] = tc
}
