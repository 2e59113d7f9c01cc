package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Failed to delete old config backup", logger.FieldFile, back3, logger.FieldError, err)
	}
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// Defaults returns a Config holding only built-in defaults
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode
		panic(err)
	}
	return cfg
}

// WriteConfig writes cfg as TOML to configPath, backing up any existing file
func WriteConfig(configPath string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeFile(configPath, data)
}

// SetValue updates a single dotted key in the TOML file at configPath,
// creating the file when needed. The value is stored as bool, integer or
// float when it parses as one, as a list when it contains commas, and as a
// string otherwise.
func SetValue(configPath, key, raw string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return errors.NewInvalidInputError("invalid config key %q", key)
		}
	}

	doc := map[string]interface{}{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return errors.Wrapf(err, "failed to parse %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", configPath)
	}

	section := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := section[p].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			section[p] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = parseValue(raw)

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeFile(configPath, data)
}

func parseValue(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.Contains(raw, ",") {
		var list []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		return list
	}
	return raw
}

func writeFile(configPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}
