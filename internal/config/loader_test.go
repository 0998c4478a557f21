package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSetDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	mgr.setDefaults()

	assert.Equal(t, "wkview", mgr.viper.GetString("webview.message_handler"))
	assert.Equal(t, "ignore", mgr.viper.GetString("webview.miss_policy"))
	assert.Equal(t, 1024, mgr.viper.GetInt("window.width"))
	assert.Equal(t, "index.html", mgr.viper.GetString("serve.index"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	mgr, err := NewManager("")
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	assert.Equal(t, DefaultConfig(), mgr.Get())
	assert.Empty(t, mgr.ConfigFileUsed())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	err = mgr.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, `
[webview]
debug = true
init_scripts = ["a.js", "  ", "b.js"]
message_handler = "bridge"
miss_policy = "FAIL"

[window]
title = "Docs"
width = 800
height = 600

[serve]
index = "/home.html"

[logging]
level = "DEBUG"
format = "json"
`)

	mgr, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	assert.True(t, cfg.WebView.Debug)
	assert.Equal(t, []string{"a.js", "b.js"}, cfg.WebView.InitScripts)
	assert.Equal(t, "bridge", cfg.WebView.MessageHandler)
	assert.Equal(t, MissPolicyFail, cfg.WebView.MissPolicy)
	assert.Equal(t, "Docs", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "home.html", cfg.Serve.Index)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB, "unset keys keep their defaults")
	assert.Equal(t, path, mgr.ConfigFileUsed())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "[window]\ntitle = \"file\"\n")
	t.Setenv("WKVIEW_WINDOW_TITLE", "env")
	t.Setenv("WKVIEW_LOG_LEVEL", "warn")
	t.Setenv("WKVIEW_WEBVIEW_DEBUG", "true")

	mgr, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	assert.Equal(t, "env", cfg.Window.Title)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.WebView.Debug)
}

func TestLoad_InvalidTOML(t *testing.T) {
	mgr, err := NewManager(writeFile(t, "[window\nwidth = "))
	require.NoError(t, err)

	err = mgr.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be valid TOML")
}

func TestLoad_ValidationCollectsAllProblems(t *testing.T) {
	mgr, err := NewManager(writeFile(t, `
[webview]
message_handler = "not valid"
miss_policy = "retry"

[window]
width = 10

[logging]
level = "loud"
`))
	require.NoError(t, err)

	err = mgr.Load()
	require.Error(t, err)
	for _, want := range []string{
		"webview.message_handler",
		"webview.miss_policy",
		"window.width",
		"logging.level",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebView.MissPolicy = ""
	cfg.WebView.MessageHandler = "  wkview "
	cfg.Logging.Format = " JSON"

	normalizeConfig(cfg)

	assert.Equal(t, MissPolicyIgnore, cfg.WebView.MissPolicy)
	assert.Equal(t, "wkview", cfg.WebView.MessageHandler)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidateConfig_Defaults(t *testing.T) {
	assert.NoError(t, validateConfig(DefaultConfig()))
}

func TestValidateServe(t *testing.T) {
	tests := []struct {
		index string
		ok    bool
	}{
		{index: "index.html", ok: true},
		{index: "docs/index.html", ok: true},
		{index: "", ok: false},
		{index: "../index.html", ok: false},
		{index: "a//b.html", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.index, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Serve.Index = tt.index
			assert.Equal(t, tt.ok, len(validateServe(cfg)) == 0)
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, isIdentifier("wkview"))
	assert.True(t, isIdentifier("_bridge2"))
	assert.True(t, isIdentifier("$x"))
	assert.False(t, isIdentifier(""))
	assert.False(t, isIdentifier("2fast"))
	assert.False(t, isIdentifier("a-b"))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, WriteDefault(path))
	assert.ErrorIs(t, WriteDefault(path), ErrConfigExists)

	mgr, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())
	assert.Equal(t, DefaultConfig(), mgr.Get())
}

func TestGetXDGDirs(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_STATE_HOME", "/tmp/state")

	dirs, err := GetXDGDirs()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cfg/wkview", dirs.ConfigHome)
	assert.Equal(t, "/tmp/state/wkview", dirs.StateHome)

	logDir, err := GetLogDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/state/wkview/logs", logDir)
}
