package config

import (
	"fmt"
	"path"
	"strings"
)

const (
	minWindowSize = 100
	maxWindowSize = 16384
	maxDebounceMS = 10000
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateWebView(config)...)
	validationErrors = append(validationErrors, validateWindow(config)...)
	validationErrors = append(validationErrors, validateServe(config)...)
	validationErrors = append(validationErrors, validateLogging(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateWebView(config *Config) []string {
	var validationErrors []string

	switch config.WebView.MissPolicy {
	case MissPolicyIgnore, MissPolicyFail:
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("webview.miss_policy must be one of: ignore, fail (got: %s)", config.WebView.MissPolicy))
	}

	name := config.WebView.MessageHandler
	if name == "" {
		validationErrors = append(validationErrors, "webview.message_handler cannot be empty")
	} else if !isIdentifier(name) {
		validationErrors = append(validationErrors,
			fmt.Sprintf("webview.message_handler must be a JavaScript identifier (got: %s)", name))
	}

	return validationErrors
}

func validateWindow(config *Config) []string {
	var validationErrors []string
	if config.Window.Width < minWindowSize || config.Window.Width > maxWindowSize {
		validationErrors = append(validationErrors,
			fmt.Sprintf("window.width must be between %d and %d", minWindowSize, maxWindowSize))
	}
	if config.Window.Height < minWindowSize || config.Window.Height > maxWindowSize {
		validationErrors = append(validationErrors,
			fmt.Sprintf("window.height must be between %d and %d", minWindowSize, maxWindowSize))
	}
	return validationErrors
}

func validateServe(config *Config) []string {
	var validationErrors []string
	index := config.Serve.Index
	if index == "" {
		validationErrors = append(validationErrors, "serve.index cannot be empty")
	} else if path.Clean(index) != index || strings.HasPrefix(index, "..") {
		validationErrors = append(validationErrors,
			fmt.Sprintf("serve.index must be a clean relative path (got: %s)", index))
	}
	if config.Serve.DebounceMS < 0 || config.Serve.DebounceMS > maxDebounceMS {
		validationErrors = append(validationErrors,
			fmt.Sprintf("serve.debounce_ms must be between 0 and %d", maxDebounceMS))
	}
	return validationErrors
}

func validateLogging(config *Config) []string {
	var validationErrors []string

	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !contains(validLevels, config.Logging.Level) {
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.level must be one of: %s (got: %s)", strings.Join(validLevels, ", "), config.Logging.Level))
	}

	validFormats := []string{"console", "json"}
	if !contains(validFormats, config.Logging.Format) {
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.format must be one of: %s (got: %s)", strings.Join(validFormats, ", "), config.Logging.Format))
	}

	if config.Logging.MaxSizeMB < 1 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be at least 1")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}

	return validationErrors
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
