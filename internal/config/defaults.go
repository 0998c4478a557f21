package config

// DefaultConfig returns the configuration used when no file or environment
// overrides exist.
func DefaultConfig() *Config {
	return &Config{
		WebView: WebViewConfig{
			Debug:          false,
			MessageHandler: "wkview",
			MissPolicy:     MissPolicyIgnore,
		},
		Window: WindowConfig{
			Title:           "wkview",
			Width:           1024,
			Height:          768,
			FollowPageTitle: true,
		},
		Serve: ServeConfig{
			Index:      "index.html",
			Watch:      false,
			DebounceMS: 150,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}
