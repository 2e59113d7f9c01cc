package am

import (
	"os"
	"sort"
	"strings"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/fundlink/am.toml
	SourceUser        ConfigSource = "user"        // ~/.fundlink/am.toml
	SourceProject     ConfigSource = "project"     // project am.toml
	SourceEnvironment ConfigSource = "environment" // FUNDLINK_* env vars
)

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"` // File path or env var name
}

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string
}

// secretKeys are masked in introspection output
var secretKeys = map[string]bool{
	"semantic.api_key":    true,
	"output.database.dsn": true,
}

// GetConfigIntrospection returns every effective setting with the source
// that supplied it
func GetConfigIntrospection() []SettingInfo {
	v := GetViper()

	sourcesMu.Lock()
	sources := make(map[string]SourceInfo, len(ConfigSources))
	for k, s := range ConfigSources {
		sources[k] = s
	}
	sourcesMu.Unlock()

	keys := v.AllKeys()
	sort.Strings(keys)

	settings := make([]SettingInfo, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sources[key]; ok {
			info = si
		}

		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if os.Getenv(envKey) != "" {
			info = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}

		value := v.Get(key)
		if secretKeys[key] && v.GetString(key) != "" {
			value = "********"
		}

		settings = append(settings, SettingInfo{
			Key:        key,
			Value:      value,
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}
