package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/fundlink/errors"
)

// EnvPrefix is prepended to every configuration key when read from the environment
const EnvPrefix = "FUNDLINK"

// ProjectConfigName is the file searched for in the working directory and its parents
const ProjectConfigName = "am.toml"

var (
	globalConfig  *Config
	viperInstance *viper.Viper

	// ConfigSources records which file last set each key during loading
	ConfigSources = map[string]SourceInfo{}
	sourcesMu     sync.Mutex
)

// Load reads the fundlink configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Set defaults but don't bind environment variables for this specific load
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil

	sourcesMu.Lock()
	ConfigSources = map[string]SourceInfo{}
	sourcesMu.Unlock()
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific sensitive configuration values to environment variables
	BindSensitiveEnvVars(v)

	// Set defaults first
	SetDefaults(v)

	// Manually merge configs in precedence order: system -> user -> project -> env vars
	mergeConfigFiles(v, configPaths())

	viperInstance = v
	return v
}

// findProjectConfig searches for am.toml by walking up the directory tree
// Returns the path to the first config file found, or empty string if none found
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		amPath := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root, stop searching
			break
		}
		dir = parent
	}

	return ""
}

// UserConfigPath returns ~/.fundlink/am.toml
func UserConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".fundlink", ProjectConfigName)
}

type sourcedPath struct {
	path   string
	source ConfigSource
}

// configPaths lists candidate config files, lowest precedence first
func configPaths() []sourcedPath {
	paths := []sourcedPath{
		{"/etc/fundlink/am.toml", SourceSystem},
		{UserConfigPath(), SourceUser},
	}
	if projectConfig := findProjectConfig(); projectConfig != "" {
		paths = append(paths, sourcedPath{projectConfig, SourceProject})
	}
	return paths
}

// mergeConfigFiles merges configuration files in order and records the
// source of every key it sets. Missing or unreadable files are skipped.
func mergeConfigFiles(v *viper.Viper, paths []sourcedPath) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()

	for _, p := range paths {
		if _, err := os.Stat(p.path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(p.path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}

		// Set leaf keys so a partial section does not wipe sibling defaults
		for _, key := range tempViper.AllKeys() {
			v.Set(key, tempViper.Get(key))
			ConfigSources[key] = SourceInfo{Source: p.source, Path: p.path}
		}
	}
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return initViper().GetString(key)
}

// GetBool returns a configuration value as bool using dot notation
func GetBool(key string) bool {
	return initViper().GetBool(key)
}
