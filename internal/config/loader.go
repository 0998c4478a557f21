package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager loads the configuration from file and environment.
type Manager struct {
	config *Config
	viper  *viper.Viper
	file   string
	mu     sync.RWMutex
}

// NewManager creates a manager. An empty file searches the XDG config
// directory and the current directory for config.toml.
func NewManager(file string) (*Manager, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
		}
		v.AddConfigPath(configDir)
		v.AddConfigPath(".") // Current directory for development
	}

	// WKVIEW_WEBVIEW_DEBUG, WKVIEW_LOGGING_LEVEL, ...
	v.SetEnvPrefix("WKVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "WKVIEW_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind WKVIEW_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "WKVIEW_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind WKVIEW_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v}, nil
}

// Load reads the configuration. A missing config file is not an error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	file, err := m.readConfigFile()
	if err != nil {
		return err
	}

	config, err := m.unmarshalConfig()
	if err != nil {
		return err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	m.file = file
	return nil
}

// readConfigFile returns the file that was read, empty when none was found
// on the search path.
func (m *Manager) readConfigFile() (string, error) {
	err := m.viper.ReadInConfig()
	if err == nil {
		return m.viper.ConfigFileUsed(), nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return "", nil
	}
	// An explicit file that does not exist surfaces as a filesystem error.
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("config file %s does not exist", m.viper.ConfigFileUsed())
	}

	configFile := m.viper.ConfigFileUsed()
	if configFile == "" {
		configDir, _ := GetConfigDir()
		configFile = filepath.Join(configDir, configFileName)
	}
	return "", fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
}

func (m *Manager) unmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	return config, nil
}

func normalizeConfig(config *Config) {
	switch MissPolicy(strings.ToLower(strings.TrimSpace(string(config.WebView.MissPolicy)))) {
	case MissPolicyFail:
		config.WebView.MissPolicy = MissPolicyFail
	case MissPolicyIgnore, "":
		config.WebView.MissPolicy = MissPolicyIgnore
	default:
		// left as is so validation reports it
	}

	config.WebView.MessageHandler = strings.TrimSpace(config.WebView.MessageHandler)
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	config.Serve.Index = strings.TrimPrefix(strings.TrimSpace(config.Serve.Index), "/")

	scripts := config.WebView.InitScripts[:0]
	for _, s := range config.WebView.InitScripts {
		if s = strings.TrimSpace(s); s != "" {
			scripts = append(scripts, s)
		}
	}
	config.WebView.InitScripts = scripts
}

// Get returns a copy of the loaded configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	configCopy := *m.config
	configCopy.WebView.InitScripts = append([]string(nil), m.config.WebView.InitScripts...)
	return &configCopy
}

// ConfigFileUsed returns the file the configuration was read from, empty
// when only defaults and environment were used.
func (m *Manager) ConfigFileUsed() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.file
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("webview.debug", defaults.WebView.Debug)
	m.viper.SetDefault("webview.init_scripts", defaults.WebView.InitScripts)
	m.viper.SetDefault("webview.message_handler", defaults.WebView.MessageHandler)
	m.viper.SetDefault("webview.miss_policy", string(defaults.WebView.MissPolicy))

	m.viper.SetDefault("window.title", defaults.Window.Title)
	m.viper.SetDefault("window.width", defaults.Window.Width)
	m.viper.SetDefault("window.height", defaults.Window.Height)
	m.viper.SetDefault("window.follow_page_title", defaults.Window.FollowPageTitle)

	m.viper.SetDefault("serve.index", defaults.Serve.Index)
	m.viper.SetDefault("serve.watch", defaults.Serve.Watch)
	m.viper.SetDefault("serve.debounce_ms", defaults.Serve.DebounceMS)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.file", defaults.Logging.File)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
}

var (
	globalManager *Manager
	globalOnce    sync.Once
	globalErr     error
)

// Init loads the global configuration once.
func Init(file string) error {
	globalOnce.Do(func() {
		m, err := NewManager(file)
		if err != nil {
			globalErr = err
			return
		}
		if err := m.Load(); err != nil {
			globalErr = err
			return
		}
		globalManager = m
	})
	return globalErr
}

// Get returns the global configuration, or the defaults before Init.
func Get() *Config {
	if globalManager == nil {
		return DefaultConfig()
	}
	return globalManager.Get()
}

// GlobalManager returns the global manager, nil before a successful Init.
func GlobalManager() *Manager {
	return globalManager
}
