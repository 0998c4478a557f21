// Package cli wires configuration, logging and the native host into the
// wkview commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/build"
	"github.com/bnema/wkview/internal/cli/styles"
	"github.com/bnema/wkview/internal/config"
	"github.com/bnema/wkview/internal/logging"
)

const logFileName = "wkview.log"

// Overrides are command line values that win over the configuration.
type Overrides struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

// App holds CLI dependencies.
type App struct {
	Config     *config.Config
	ConfigFile string
	Theme      *styles.Theme
	BuildInfo  build.Info
	Logger     zerolog.Logger

	ctx       context.Context
	logCloser io.Closer
}

// NewApp loads the configuration and sets up logging.
func NewApp(ctx context.Context, o Overrides) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	mgr, err := config.NewManager(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}

	logCfg, err := loggingConfig(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger, closer := logging.New(logCfg)
	logger.Debug().
		Str("config_file", mgr.ConfigFileUsed()).
		Str("log_file", logCfg.File).
		Msg("configuration loaded")

	return &App{
		Config:     cfg,
		ConfigFile: mgr.ConfigFileUsed(),
		Theme:      styles.NewTheme(),
		Logger:     logger,
		ctx:        logging.WithContext(ctx, logger),
		logCloser:  closer,
	}, nil
}

// loggingConfig maps the configuration onto logging.Config. A relative log
// file is placed in the XDG state directory.
func loggingConfig(c config.LoggingConfig) (logging.Config, error) {
	out := logging.DefaultConfig()
	out.Level = logging.ParseLevel(c.Level)
	if c.Format != "" {
		out.Format = c.Format
	}
	out.TimeFormat = "15:04:05"
	out.MaxSizeMB = c.MaxSizeMB
	out.MaxBackups = c.MaxBackups
	out.MaxAgeDays = c.MaxAgeDays

	file := c.File
	if file != "" && !filepath.IsAbs(file) {
		dir, err := config.GetLogDir()
		if err != nil {
			return out, fmt.Errorf("resolve log directory: %w", err)
		}
		if file == "auto" {
			file = logFileName
		}
		file = filepath.Join(dir, file)
	}
	out.File = file
	return out, nil
}

// Context returns the application context carrying the logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// Close flushes the log file.
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
