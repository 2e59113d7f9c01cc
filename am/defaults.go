package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/fundlink/relate"
	"github.com/teranos/fundlink/rules"
	"github.com/teranos/fundlink/similarity"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Input defaults
	v.SetDefault("input.datasets", "datasets.csv")
	v.SetDefault("input.programs", "programs.csv")
	v.SetDefault("input.projects", "projects.csv")
	v.SetDefault("input.grants", "grants.csv")
	v.SetDefault("input.delimiter", ",")

	// Match defaults
	v.SetDefault("match.workers", 1)
	v.SetDefault("match.funding_accumulation", string(rules.LastMatchWins))

	// Semantic matching is opt-in
	v.SetDefault("semantic.enabled", false)
	v.SetDefault("semantic.threshold", similarity.DefaultThreshold)
	v.SetDefault("semantic.provider", similarity.ProviderOllama)
	v.SetDefault("semantic.base_url", similarity.DefaultOllamaEndpoint)
	v.SetDefault("semantic.model", similarity.DefaultOllamaModel)
	v.SetDefault("semantic.requests_per_second", 0) // Unlimited
	v.SetDefault("semantic.timeout_seconds", 60)
	v.SetDefault("semantic.on_error", string(relate.AbortOnError))

	// Output defaults
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.formats", []string{FormatXLSX})
	v.SetDefault("output.database.driver", "")
	v.SetDefault("output.database.dsn", "")
	v.SetDefault("output.metrics_file", "")
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	// Embedding provider credentials; OPENAI_API_KEY is honored as a fallback
	v.BindEnv("semantic.api_key", "FUNDLINK_SEMANTIC_API_KEY", "OPENAI_API_KEY")

	// Result database connection string
	v.BindEnv("output.database.dsn", "FUNDLINK_DATABASE_DSN")
}

// ColumnDelimiter returns the table column separator as a rune
func (c *Config) ColumnDelimiter() rune {
	switch c.Input.Delimiter {
	case "tab", "\\t", "\t":
		return '\t'
	case "":
		return ','
	default:
		return []rune(c.Input.Delimiter)[0]
	}
}

// RelateConfig converts the match and semantic sections into evaluator settings
func (c *Config) RelateConfig() relate.Config {
	return relate.Config{
		Semantic:            c.Semantic.Enabled,
		Threshold:           c.Semantic.Threshold,
		FundingAccumulation: rules.Accumulation(c.Match.FundingAccumulation),
		OnSimilarityError:   relate.ErrorPolicy(c.Semantic.OnError),
		Workers:             c.Match.Workers,
	}
}

// SimilarityOptions converts the semantic section into provider options.
// An OpenAI provider left on the Ollama defaults gets OpenAI's defaults instead.
func (c *Config) SimilarityOptions() similarity.Options {
	opts := similarity.Options{
		Provider:          c.Semantic.Provider,
		BaseURL:           c.Semantic.BaseURL,
		Model:             c.Semantic.Model,
		APIKey:            c.Semantic.APIKey,
		RequestsPerSecond: c.Semantic.RequestsPerSecond,
		Timeout:           time.Duration(c.Semantic.TimeoutSeconds) * time.Second,
	}
	if opts.Provider == similarity.ProviderOpenAI {
		if opts.BaseURL == similarity.DefaultOllamaEndpoint {
			opts.BaseURL = ""
		}
		if opts.Model == similarity.DefaultOllamaModel || opts.Model == "" {
			opts.Model = similarity.DefaultOpenAIModel
		}
	}
	return opts
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Datasets: %s, Workers: %d, Semantic: %t, Formats: %v}",
		c.Input.Datasets, c.Match.Workers, c.Semantic.Enabled, c.Output.Formats)
}
