// Package config loads wkview settings from TOML files and WKVIEW_*
// environment variables.
package config

// Config is the complete wkview configuration.
type Config struct {
	WebView WebViewConfig `mapstructure:"webview" toml:"webview"`
	Window  WindowConfig  `mapstructure:"window" toml:"window"`
	Serve   ServeConfig   `mapstructure:"serve" toml:"serve"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
}

// MissPolicy names what happens to wkview:// requests nothing answers.
type MissPolicy string

const (
	MissPolicyIgnore MissPolicy = "ignore"
	MissPolicyFail   MissPolicy = "fail"
)

// WebViewConfig configures every web view wkview creates.
type WebViewConfig struct {
	// Debug enables the web inspector.
	Debug bool `mapstructure:"debug" toml:"debug"`
	// InitScripts are paths of scripts injected at document start, in order.
	InitScripts []string `mapstructure:"init_scripts" toml:"init_scripts"`
	// MessageHandler is the window.webkit.messageHandlers name.
	MessageHandler string     `mapstructure:"message_handler" toml:"message_handler"`
	MissPolicy     MissPolicy `mapstructure:"miss_policy" toml:"miss_policy"`
}

// WindowConfig configures the host window.
type WindowConfig struct {
	Title  string `mapstructure:"title" toml:"title"`
	Width  int    `mapstructure:"width" toml:"width"`
	Height int    `mapstructure:"height" toml:"height"`
	// FollowPageTitle replaces the window title with the page title after
	// every finished navigation.
	FollowPageTitle bool `mapstructure:"follow_page_title" toml:"follow_page_title"`
}

// ServeConfig configures `wkview serve`.
type ServeConfig struct {
	// Index is served for directory requests.
	Index string `mapstructure:"index" toml:"index"`
	// Watch reloads the page when a served file changes.
	Watch bool `mapstructure:"watch" toml:"watch"`
	// DebounceMS coalesces bursts of file changes into one reload.
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
	// File, when set, receives a copy of every entry and is rotated by size.
	File       string `mapstructure:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days"`
}
