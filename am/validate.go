package am

import (
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/relate"
	"github.com/teranos/fundlink/rules"
	"github.com/teranos/fundlink/similarity"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Input tables: all four are required for a pass
	for _, in := range []struct{ key, path string }{
		{"input.datasets", c.Input.Datasets},
		{"input.programs", c.Input.Programs},
		{"input.projects", c.Input.Projects},
		{"input.grants", c.Input.Grants},
	} {
		if in.path == "" {
			return errors.NewInvalidInputError("%s cannot be empty", in.key)
		}
	}
	if r := []rune(c.Input.Delimiter); len(r) > 1 && c.Input.Delimiter != "tab" && c.Input.Delimiter != "\\t" {
		return errors.NewInvalidInputError("input.delimiter must be a single character or \"tab\", got %q", c.Input.Delimiter)
	}

	// Workers: 0 falls back to one, negative is invalid
	if c.Match.Workers < 0 {
		return errors.NewInvalidInputError("match.workers must be >= 0, got %d", c.Match.Workers)
	}
	if acc := rules.Accumulation(c.Match.FundingAccumulation); acc != "" && !acc.Valid() {
		return errors.NewInvalidInputError("match.funding_accumulation must be %q or %q, got %q",
			rules.LastMatchWins, rules.AccumulateAll, c.Match.FundingAccumulation)
	}

	// Semantic settings are validated only when the rule is enabled
	if c.Semantic.Enabled {
		switch c.Semantic.Provider {
		case similarity.ProviderOllama, similarity.ProviderOpenAI:
		default:
			return errors.NewInvalidInputError("semantic.provider must be %q or %q, got %q",
				similarity.ProviderOllama, similarity.ProviderOpenAI, c.Semantic.Provider)
		}
		if c.Semantic.Threshold < -1 || c.Semantic.Threshold > 1 {
			return errors.NewInvalidInputError("semantic.threshold must be within [-1, 1], got %f", c.Semantic.Threshold)
		}
		if c.Semantic.TimeoutSeconds <= 0 {
			return errors.NewInvalidInputError("semantic.timeout_seconds must be > 0, got %d", c.Semantic.TimeoutSeconds)
		}
		if c.Semantic.Provider == similarity.ProviderOpenAI && c.Semantic.APIKey == "" {
			return errors.WithHint(
				errors.NewInvalidInputError("semantic.api_key is required for the openai provider"),
				"set FUNDLINK_SEMANTIC_API_KEY or OPENAI_API_KEY")
		}
	}
	if c.Semantic.RequestsPerSecond < 0 {
		return errors.NewInvalidInputError("semantic.requests_per_second must be >= 0, got %f", c.Semantic.RequestsPerSecond)
	}
	switch relate.ErrorPolicy(c.Semantic.OnError) {
	case "", relate.AbortOnError, relate.RecordNo:
	default:
		return errors.NewInvalidInputError("semantic.on_error must be %q or %q, got %q",
			relate.AbortOnError, relate.RecordNo, c.Semantic.OnError)
	}

	// Output: at least one sink, known formats only
	if len(c.Output.Formats) == 0 && c.Output.Database.Driver == "" {
		return errors.NewInvalidInputError("output.formats is empty and no output.database is configured")
	}
	for _, f := range c.Output.Formats {
		switch f {
		case FormatCSV, FormatXLSX, FormatJSON:
		default:
			return errors.NewInvalidInputError("output.formats: unknown format %q (csv, xlsx, json)", f)
		}
	}
	switch c.Output.Database.Driver {
	case "":
	case DriverSQLite, DriverPostgres:
		if c.Output.Database.DSN == "" {
			return errors.NewInvalidInputError("output.database.dsn cannot be empty when driver %q is set", c.Output.Database.Driver)
		}
	default:
		return errors.NewInvalidInputError("output.database.driver must be %q or %q, got %q",
			DriverSQLite, DriverPostgres, c.Output.Database.Driver)
	}

	return nil
}
