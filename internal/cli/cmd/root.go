// Package cmd provides Cobra CLI commands for wkview.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/wkview/internal/build"
	"github.com/bnema/wkview/internal/cli"
)

var (
	app       *cli.App
	buildInfo build.Info

	configFile string
	logLevel   string
	logFormat  string

	rootCmd = &cobra.Command{
		Use:   "wkview",
		Short: "Show web content in a native WebKit window",
		Long: `wkview opens a macOS window hosting a WKWebView.

It can load a remote page, a local HTML file, or a directory served from
the in-app wkview:// scheme with optional live reload. Navigation events
and messages posted by the page are logged and can be followed live in a
terminal monitor.

Examples:
  wkview open https://example.com
  wkview open --html page.html --monitor
  wkview serve ./site --watch`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version", "init":
				return nil
			}

			var err error
			app, err = cli.NewApp(cmd.Context(), cli.Overrides{
				ConfigFile: configFile,
				LogLevel:   logLevel,
				LogFormat:  logFormat,
			})
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/wkview/config.toml)")
	flags.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: console or json")
}

// Execute runs the root command.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
