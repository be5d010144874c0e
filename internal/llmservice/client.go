package llmservice

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/models"
)

var thinkRe = regexp.MustCompile(models.ThinkTag)

// Client wraps a langchaingo model with the call options from config.
type Client struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
}

// NewOllamaLLM builds the chat model served by the local ollama endpoint.
func NewOllamaLLM(cfg *config.LLMConfig) (*ollama.LLM, error) {
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Msg("Creating ollama model")
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama model: %w", err)
	}
	return llm, nil
}

// NewOpenAILLM builds a chat model for an OpenAI-compatible endpoint such as
// OpenRouter. A "Bearer " prefix on the key is tolerated.
func NewOpenAILLM(cfg *config.LLMConfig) (*openai.LLM, error) {
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Msg("Creating openai model")
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init openai model: %w", err)
	}
	return llm, nil
}

// NewLLM picks the chat model implementation for cfg.Provider.
func NewLLM(cfg *config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAILLM(cfg)
	case config.ProviderOllama, "":
		return NewOllamaLLM(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func NewClient(model llms.Model, cfg *config.LLMConfig) *Client {
	return &Client{
		model:       model,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (c *Client) Model() llms.Model {
	return c.model
}

func (c *Client) Temperature() float64 {
	return c.temperature
}

// Generate sends a single prompt and returns the trimmed completion. A zero
// timeout blocks until the model answers.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, c.CallOptions()...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	log.Debug().Int("prompt_chars", len(prompt)).Dur("took", time.Since(start)).Msg("Model call finished")
	return CleanOutput(out), nil
}

// WithTimeout bounds ctx by the configured model timeout, if any.
func (c *Client) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) CallOptions() []llms.CallOption {
	return []llms.CallOption{llms.WithTemperature(c.temperature)}
}

// CleanOutput drops reasoning blocks some models emit before the answer.
func CleanOutput(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}
