package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_AnswerTask(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.5, cfg.Tasks[TaskAnswer].Temperature)
	assert.Equal(t, 700, cfg.Tasks[TaskAnswer].MaxTokens)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "You are a helpful assistant.", cfg.SystemPrompt)
}

func TestLoadConfig_TaskOverrides(t *testing.T) {
	t.Setenv("SPOT_LLM_TIMEOUT_MS", "9000")
	t.Setenv("SPOT_LLM_ANSWER_TIMEOUT_MS", "15000")
	t.Setenv("SPOT_LLM_ANSWER_TEMPERATURE", "0.2")
	t.Setenv("SPOT_LLM_ANSWER_MAX_TOKENS", "400")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskAnswer))
	assert.Equal(t, 0.2, cfg.Tasks[TaskAnswer].Temperature)
	assert.Equal(t, 400, cfg.Tasks[TaskAnswer].MaxTokens)
	assert.Equal(t, 9000, cfg.TaskTimeout(TaskType("unknown")))
}

func TestLoadConfig_InvalidOverridesIgnored(t *testing.T) {
	t.Setenv("SPOT_LLM_ANSWER_TIMEOUT_MS", "not-a-number")
	t.Setenv("SPOT_LLM_ANSWER_TEMPERATURE", "9")
	t.Setenv("SPOT_LLM_MAX_RETRIES", "-1")

	cfg := LoadConfig()

	assert.Equal(t, 30000, cfg.TaskTimeout(TaskAnswer))
	assert.Equal(t, 0.5, cfg.Tasks[TaskAnswer].Temperature)
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestLoadConfig_ProviderSelectsKeyAndModel(t *testing.T) {
	t.Setenv("SPOT_LLM_API_KEY", "")
	t.Setenv("SPOT_LLM_MODEL", "")
	t.Setenv("SPOT_LLM_PROVIDER", "Anthropic")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := LoadConfig()

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.APIKey)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Model)
}

func TestLoadConfig_ExplicitKeyWins(t *testing.T) {
	t.Setenv("SPOT_LLM_PROVIDER", "")
	t.Setenv("SPOT_LLM_API_KEY", "sk-explicit")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg := LoadConfig()

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-explicit", cfg.APIKey)
}
