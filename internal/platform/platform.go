// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"runtime"
)

// ConfigDirEnv overrides the configuration directory on every platform.
const ConfigDirEnv = "FIXDATES_CONFIG_DIR"

// AppName is the directory name used under per-user configuration roots.
const AppName = "fixdates"

// Platform defines the interface for platform-specific operations
type Platform interface {
	GetConfigDir() string
	GetDataDir() string
	NormalizePath(path string) string
	SupportsCaseSensitivePaths() bool
}

// Config holds platform-specific configuration
type Config struct {
	OS                 string `json:"os" yaml:"os"`
	Architecture       string `json:"architecture" yaml:"architecture"`
	ConfigDirectory    string `json:"config_directory" yaml:"config_directory"`
	DataDirectory      string `json:"data_directory" yaml:"data_directory"`
	CaseSensitivePaths bool   `json:"case_sensitive_paths" yaml:"case_sensitive_paths"`
}

// GetPlatform returns the appropriate platform implementation for the current OS
func GetPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return &WindowsPlatform{}
	default:
		return &UnixPlatform{}
	}
}

// GetConfig returns platform configuration for the current system
func GetConfig() *Config {
	platform := GetPlatform()
	return &Config{
		OS:                 runtime.GOOS,
		Architecture:       runtime.GOARCH,
		ConfigDirectory:    platform.GetConfigDir(),
		DataDirectory:      platform.GetDataDir(),
		CaseSensitivePaths: platform.SupportsCaseSensitivePaths(),
	}
}

// IsWindows returns true if running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
