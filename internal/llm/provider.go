package llm

import (
	"context"

	"github.com/pveilleux/claimsift/internal/model"
)

// Provider defines the interface for generative-model oracle backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends the decision prompt to the oracle and returns its
	// free-text answer. Decoding must be pinned to the provider's most
	// deterministic setting.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one oracle consultation
type GenerateRequest struct {
	// Prompt is the fully assembled decision prompt
	Prompt string

	// ImagePaths are incident image files to attach for multimodal models.
	// Providers that cannot attach images ignore them; the prompt already
	// lists the paths.
	ImagePaths []string

	// Model overrides the configured model name
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the oracle's raw answer
type GenerateResponse struct {
	// Text is the raw free-text response, untrimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds oracle provider configuration
type Config struct {
	// Provider name: "ollama", "openai", "anthropic", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for a single API request
	Timeout int // seconds

	// Retries on transient transport failure (never on oracle refusal)
	Retries int

	// MaxTokens for response generation
	MaxTokens int

	// RatePerSecond throttles oracle invocations
	RatePerSecond float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "ollama",
		Model:         "llava-phi3",
		Timeout:       120,
		Retries:       1,
		MaxTokens:     1000,
		RatePerSecond: 1,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:      modelConfig.Provider,
		Model:         modelConfig.Model,
		APIKey:        modelConfig.APIKey,
		BaseURL:       modelConfig.BaseURL,
		Timeout:       modelConfig.Timeout,
		Retries:       modelConfig.Retries,
		MaxTokens:     modelConfig.MaxTokens,
		RatePerSecond: modelConfig.RatePerSecond,
		HTTPProxy:     modelConfig.HTTPProxy,
		HTTPSProxy:    modelConfig.HTTPSProxy,
	}
}
