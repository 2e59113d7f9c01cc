package am

// Config represents the fundlink configuration
type Config struct {
	Input    InputConfig    `mapstructure:"input" toml:"input" json:"input" yaml:"input"`
	Match    MatchConfig    `mapstructure:"match" toml:"match" json:"match" yaml:"match"`
	Semantic SemanticConfig `mapstructure:"semantic" toml:"semantic" json:"semantic" yaml:"semantic"`
	Output   OutputConfig   `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
}

// InputConfig locates the four input tables
type InputConfig struct {
	Datasets string `mapstructure:"datasets" toml:"datasets" json:"datasets" yaml:"datasets"`
	Programs string `mapstructure:"programs" toml:"programs" json:"programs" yaml:"programs"`
	Projects string `mapstructure:"projects" toml:"projects" json:"projects" yaml:"projects"`
	Grants   string `mapstructure:"grants" toml:"grants" json:"grants" yaml:"grants"`

	// Delimiter separates table columns: "," or "tab"
	Delimiter string `mapstructure:"delimiter" toml:"delimiter" json:"delimiter" yaml:"delimiter"`
}

// MatchConfig configures the rule evaluation pass
type MatchConfig struct {
	Workers             int    `mapstructure:"workers" toml:"workers" json:"workers" yaml:"workers"`                                                 // Datasets evaluated concurrently (default: 1)
	FundingAccumulation string `mapstructure:"funding_accumulation" toml:"funding_accumulation" json:"funding_accumulation" yaml:"funding_accumulation"` // last_match | accumulate
}

// SemanticConfig configures the description similarity rule
type SemanticConfig struct {
	Enabled           bool    `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Threshold         float64 `mapstructure:"threshold" toml:"threshold" json:"threshold" yaml:"threshold"` // Match iff similarity > threshold (default: 0.6)
	Provider          string  `mapstructure:"provider" toml:"provider" json:"provider" yaml:"provider"`     // ollama | openai
	BaseURL           string  `mapstructure:"base_url" toml:"base_url" json:"base_url" yaml:"base_url"`
	Model             string  `mapstructure:"model" toml:"model" json:"model" yaml:"model"`
	APIKey            string  `mapstructure:"api_key" toml:"api_key" json:"-" yaml:"-"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"` // 0 = unlimited
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
	OnError           string  `mapstructure:"on_error" toml:"on_error" json:"on_error" yaml:"on_error"` // abort | record_no
}

// OutputConfig configures where relationship tables are written
type OutputConfig struct {
	Dir         string         `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"`
	Formats     []string       `mapstructure:"formats" toml:"formats" json:"formats" yaml:"formats"` // csv, xlsx, json
	Database    DatabaseConfig `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	MetricsFile string         `mapstructure:"metrics_file" toml:"metrics_file" json:"metrics_file" yaml:"metrics_file"` // Prometheus textfile, empty = off
}

// DatabaseConfig configures the optional result database
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" toml:"driver" json:"driver" yaml:"driver"` // sqlite3 | postgres, empty = off
	DSN    string `mapstructure:"dsn" toml:"dsn" json:"-" yaml:"-"`
}

// Supported values
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
