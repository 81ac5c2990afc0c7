// Package config loads CLI settings from TOML files and MEMBERGUARD_* env vars.
//
// Precedence, lowest first: defaults, system file, user file, environment,
// then values applied with Set for the current run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	appName  = "memberguard"
	fileName = "config.toml"
)

var (
	configDir      string
	configFilePath string
)

// defaults for every key the CLI reads. instance.token is the dashboard token
// or signed instance sent with site-scoped calls; instance.id with
// instance.dev_secret signs one locally instead. log.file is added in Init
// since it depends on the config directory.
var defaults = map[string]interface{}{
	"api.base_url":        "http://localhost:8787",
	"api.timeout":         30,
	"output.format":       "text",
	"instance.token":      "",
	"instance.id":         "",
	"instance.dev_secret": "",
	"log.level":           "info",
}

func userConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appName, "cli"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "cli"), nil
}

func systemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "MemberGuard", "cli", fileName)}
	}
	return []string{
		filepath.Join("/etc", appName, "cli", fileName),
		filepath.Join("/usr/local/etc", appName, "cli", fileName),
	}
}

// Init resets viper and loads configuration. An empty configPath selects the
// per-user file. Missing files are fine; malformed ones are reported.
func Init(configPath string) error {
	if configPath == "" {
		dir, err := userConfigDir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		configPath = filepath.Join(dir, fileName)
	}
	configFilePath = configPath
	configDir = filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	viper.Reset()
	viper.SetConfigType("toml")
	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.SetDefault("log.file", filepath.Join(configDir, "memberguard-cli.log"))

	for _, path := range systemConfigPaths() {
		if fileExists(path) {
			if err := mergeFile(path); err != nil {
				return err
			}
			break
		}
	}
	if fileExists(configFilePath) {
		return mergeFile(configFilePath)
	}
	return nil
}

func mergeFile(path string) error {
	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// expandPath replaces a leading ~ with the home directory
func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set overrides a value for this run only
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString sets key and writes the merged configuration to the user file
func SetString(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

func GetConfigDir() string {
	return configDir
}

func GetConfigFilePath() string {
	return configFilePath
}
