// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"fixdates/internal/paths"
	"fixdates/internal/platform"

	"gopkg.in/yaml.v3"
)

// DefaultSidecarSuffixes are tried in order when looking for a Takeout sidecar.
var DefaultSidecarSuffixes = []string{".json", ".supplemental-metadata.json"}

// SidecarConfig controls the JSON sidecar fallback
type SidecarConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Suffixes []string `yaml:"suffixes"`
}

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format          string        `yaml:"format"`
		Fix             bool          `yaml:"fix"`
		Dump            bool          `yaml:"dump"`
		Verbose         bool          `yaml:"verbose"`
		DryRun          bool          `yaml:"dry_run"`
		Debug           bool          `yaml:"debug"`
		NoColor         bool          `yaml:"no_color"`
		Quiet           bool          `yaml:"quiet"`
		Strict          bool          `yaml:"strict"`
		Timezone        string        `yaml:"timezone"`
		Journal         string        `yaml:"journal"`
		Sidecar         SidecarConfig `yaml:"sidecar"`
		ExcludePatterns []string      `yaml:"exclude_patterns"`
	} `yaml:"defaults"`

	// Platform-specific configurations
	Platform *PlatformConfig `yaml:"platform,omitempty"`

	// Profiles for different reconciliation scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// PlatformConfig holds platform-specific configuration settings
type PlatformConfig struct {
	Windows *WindowsConfig `yaml:"windows,omitempty"`
	Unix    *UnixConfig    `yaml:"unix,omitempty"`
}

// WindowsConfig holds Windows-specific configuration settings
type WindowsConfig struct {
	UseAppData bool   `yaml:"use_appdata"`
	ConfigDir  string `yaml:"config_dir"`
	DataDir    string `yaml:"data_dir"`
}

// UnixConfig holds Unix-specific configuration settings
type UnixConfig struct {
	UseXDG    bool   `yaml:"use_xdg"`
	ConfigDir string `yaml:"config_dir"`
	DataDir   string `yaml:"data_dir"`
}

// Profile is a named set of overrides. Unset fields leave the defaults alone.
type Profile struct {
	Description     string   `yaml:"description"`
	Format          string   `yaml:"format"`
	Fix             *bool    `yaml:"fix"`
	Dump            *bool    `yaml:"dump"`
	Verbose         *bool    `yaml:"verbose"`
	DryRun          *bool    `yaml:"dry_run"`
	Debug           *bool    `yaml:"debug"`
	NoColor         *bool    `yaml:"no_color"`
	Quiet           *bool    `yaml:"quiet"`
	Strict          *bool    `yaml:"strict"`
	Sidecar         *bool    `yaml:"sidecar"`
	SidecarSuffixes []string `yaml:"sidecar_suffixes"`
	Timezone        string   `yaml:"timezone"`
	Journal         string   `yaml:"journal"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

func boolPtr(b bool) *bool { return &b }

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.Timezone = "Local"
	config.Defaults.Sidecar.Enabled = true
	config.Defaults.Sidecar.Suffixes = append([]string(nil), DefaultSidecarSuffixes...)

	config.Platform = getDefaultPlatformConfig()

	// Built-in profiles
	config.Profiles["takeout"] = Profile{
		Description: "Google Takeout export: fix mode with journal, sidecar fallback on",
		Fix:         boolPtr(true),
		Sidecar:     boolPtr(true),
		Journal:     paths.GetJournalFile(),
	}
	config.Profiles["exif-only"] = Profile{
		Description: "Report only, EXIF DateTimeOriginal required, no sidecar fallback",
		Fix:         boolPtr(false),
		Strict:      boolPtr(true),
		Sidecar:     boolPtr(false),
	}

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultSidecarEnabled := config.Defaults.Sidecar.Enabled

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// yaml leaves bools false when the key is absent; restore true defaults
	if !containsField(data, "defaults", "sidecar", "enabled") {
		config.Defaults.Sidecar.Enabled = defaultSidecarEnabled
	}
	if len(config.Defaults.Sidecar.Suffixes) == 0 {
		config.Defaults.Sidecar.Suffixes = append([]string(nil), DefaultSidecarSuffixes...)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	ApplyPlatformDefaults(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations using platform-aware paths
func FindConfigFile() string {
	// Project-local files first
	for _, name := range []string{"fixdates.yaml", "fixdates.yml", ".fixdates.yaml", ".fixdates.yml"} {
		if fileExists(name) {
			return name
		}
	}

	standardConfig := paths.GetConfigFile()
	if fileExists(standardConfig) {
		return standardConfig
	}

	if runtime.GOOS == "windows" {
		return findWindowsConfigFile()
	}
	return findUnixConfigFile()
}

// findWindowsConfigFile looks for configuration files in Windows-specific locations
func findWindowsConfigFile() string {
	if appData := resolveWindowsEnvVar("APPDATA"); appData != "" {
		for _, name := range []string{"config.yaml", "config.yml"} {
			configFile := filepath.Join(appData, platform.AppName, name)
			if fileExists(configFile) {
				return configFile
			}
		}
	}

	if userProfile := resolveWindowsEnvVar("USERPROFILE"); userProfile != "" {
		for _, name := range []string{".fixdates.yaml", ".fixdates.yml"} {
			homeConfig := filepath.Join(userProfile, name)
			if fileExists(homeConfig) {
				return homeConfig
			}
		}
	}

	return ""
}

// findUnixConfigFile looks for configuration files in Unix-specific locations
func findUnixConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	for _, name := range []string{".fixdates.yaml", ".fixdates.yml"} {
		homeConfig := filepath.Join(home, name)
		if fileExists(homeConfig) {
			return homeConfig
		}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		xdgConfigFile := filepath.Join(xdgConfig, platform.AppName, name)
		if fileExists(xdgConfigFile) {
			return xdgConfigFile
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns a list of available profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// resolveWindowsEnvVar resolves Windows environment variables with proper expansion
func resolveWindowsEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		return ""
	}
	return normalizePlatformPath(os.ExpandEnv(value))
}

// normalizePlatformPath normalizes a path for the current platform
func normalizePlatformPath(path string) string {
	if path == "" {
		return ""
	}
	return paths.NormalizePath(paths.ExpandHome(path))
}

// getDefaultPlatformConfig returns default platform-specific configuration
func getDefaultPlatformConfig() *PlatformConfig {
	platformConfig := &PlatformConfig{}

	if runtime.GOOS == "windows" {
		platformConfig.Windows = &WindowsConfig{UseAppData: true}
	} else {
		platformConfig.Unix = &UnixConfig{UseXDG: true}
	}

	return platformConfig
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Platform != nil {
		if err := validatePlatformConfig(config.Platform); err != nil {
			return fmt.Errorf("platform configuration validation failed: %w", err)
		}
	}

	if err := validateTimezone(config.Defaults.Timezone); err != nil {
		return err
	}
	for profileName, profile := range config.Profiles {
		if err := validateTimezone(profile.Timezone); err != nil {
			return fmt.Errorf("profile '%s': %w", profileName, err)
		}
	}

	for _, pattern := range config.Defaults.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	if err := validateConfigPaths(config); err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	return nil
}

func validateTimezone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := LoadLocation(name); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return nil
}

// LoadLocation resolves a configured zone name. Empty and "Local" mean the process zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// validatePlatformConfig validates platform-specific configuration settings
func validatePlatformConfig(platformConfig *PlatformConfig) error {
	if runtime.GOOS == "windows" && platformConfig.Windows != nil {
		for _, dir := range []string{platformConfig.Windows.ConfigDir, platformConfig.Windows.DataDir} {
			if err := paths.ValidatePath(dir); err != nil {
				return fmt.Errorf("invalid Windows directory: %w", err)
			}
		}
	}

	if runtime.GOOS != "windows" && platformConfig.Unix != nil {
		for _, dir := range []string{platformConfig.Unix.ConfigDir, platformConfig.Unix.DataDir} {
			if err := paths.ValidatePath(dir); err != nil {
				return fmt.Errorf("invalid Unix directory: %w", err)
			}
		}
	}

	return nil
}

// validateConfigPaths validates all paths in the configuration
func validateConfigPaths(config *Config) error {
	if err := paths.ValidatePath(config.Defaults.Journal); err != nil {
		return fmt.Errorf("invalid journal path: %w", err)
	}

	for profileName, profile := range config.Profiles {
		if err := paths.ValidatePath(profile.Journal); err != nil {
			return fmt.Errorf("invalid journal path in profile '%s': %w", profileName, err)
		}
	}

	return nil
}

// GetEffectiveConfigDir returns the effective configuration directory based on platform and config
func GetEffectiveConfigDir(config *Config) string {
	if config.Platform != nil {
		if runtime.GOOS == "windows" && config.Platform.Windows != nil && config.Platform.Windows.ConfigDir != "" {
			return normalizePlatformPath(config.Platform.Windows.ConfigDir)
		}
		if runtime.GOOS != "windows" && config.Platform.Unix != nil && config.Platform.Unix.ConfigDir != "" {
			return normalizePlatformPath(config.Platform.Unix.ConfigDir)
		}
	}

	return paths.GetConfigDir()
}

// GetEffectiveJournalPath returns the journal path to use when the journal is
// enabled without an explicit file.
func GetEffectiveJournalPath(config *Config) string {
	if config.Platform != nil {
		if runtime.GOOS == "windows" && config.Platform.Windows != nil && config.Platform.Windows.DataDir != "" {
			return filepath.Join(normalizePlatformPath(config.Platform.Windows.DataDir), "journal.db")
		}
		if runtime.GOOS != "windows" && config.Platform.Unix != nil && config.Platform.Unix.DataDir != "" {
			return filepath.Join(normalizePlatformPath(config.Platform.Unix.DataDir), "journal.db")
		}
	}

	return paths.GetJournalFile()
}

// ApplyPlatformDefaults applies platform-specific defaults to paths in the configuration
func ApplyPlatformDefaults(config *Config) {
	if config == nil {
		return
	}

	if config.Defaults.Journal != "" {
		config.Defaults.Journal = normalizePlatformPath(config.Defaults.Journal)
	}

	for profileName, profile := range config.Profiles {
		if profile.Journal != "" {
			profile.Journal = normalizePlatformPath(profile.Journal)
		}
		config.Profiles[profileName] = profile
	}
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, onError (when non-nil) is told
// why and the default configuration is returned.
func LoadConfigOrDefault(configFile string, onError func(path string, err error)) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		if onError != nil {
			onError(configPath, err)
		}
		cfg, _ = LoadConfig("")
	}
	return cfg
}
