package model

import "time"

// Config is the complete claimsift configuration
type Config struct {
	Sections    SectionRoles     `json:"sections" yaml:"sections"`
	Store       StoreConfig      `json:"store" yaml:"store"`
	Classifier  ClassifierConfig `json:"classifier" yaml:"classifier"`
	LLM         LLMConfig        `json:"llm" yaml:"llm"`
	Output      OutputConfig     `json:"output" yaml:"output"`
	Concurrency Concurrency      `json:"concurrency" yaml:"concurrency"`
}

// StoreConfig configures the flat image store and the classification cache
type StoreConfig struct {
	ImageDir string        `json:"image_dir" yaml:"image_dir"` // Flat directory for extracted incident images
	CacheDir string        `json:"cache_dir" yaml:"cache_dir"` // Disk layer of the classification cache
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	NoCache  bool          `json:"no_cache" yaml:"no_cache"` // Disable the classification cache (images are always cached)
}

// ClassifierConfig configures the zero-shot image classifier
type ClassifierConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"` // CLIP scorer sidecar endpoint
	Timeout int    `json:"timeout" yaml:"timeout"`   // seconds

	// MinConfidence is the threshold below which the arg-max category is
	// reported as indeterminate instead of being forced onto the claim.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

// LLMConfig configures the generative-model oracle
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // "ollama", "openai", "anthropic"
	Model    string `json:"model" yaml:"model"`
	APIKey   string `json:"-" yaml:"api_key"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	Timeout  int    `json:"timeout" yaml:"timeout"` // seconds; bounds a single oracle call
	Retries  int    `json:"retries" yaml:"retries"` // transient transport failures only

	// MaxTokens limits the oracle's answer length
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// RatePerSecond throttles oracle invocations across a batch run
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second"`

	// Proxy settings
	HTTPProxy  string `json:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy string `json:"https_proxy" yaml:"https_proxy"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose       bool `json:"verbose" yaml:"verbose"`
	IncludeFooter bool `json:"include_footer" yaml:"include_footer"`
}

// Concurrency configures batch processing
type Concurrency struct {
	ReviewWorkers int `json:"review_workers" yaml:"review_workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Sections: DefaultSectionRoles(),
		Store: StoreConfig{
			ImageDir: "images",
			CacheDir: ".claimsift-cache",
			CacheTTL: 24 * time.Hour,
		},
		Classifier: ClassifierConfig{
			BaseURL:       "http://localhost:8765",
			Timeout:       30,
			MinConfidence: 0.5,
		},
		LLM: LLMConfig{
			Provider:      "ollama",
			Model:         "llava-phi3",
			Timeout:       120, // Local multimodal models are slow on first load
			Retries:       1,
			MaxTokens:     1000,
			RatePerSecond: 1,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Concurrency: Concurrency{
			ReviewWorkers: 2,
		},
	}
}
