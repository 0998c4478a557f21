package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/wkview/internal/cli"
	"github.com/bnema/wkview/pkg/webview"
)

var (
	openHTML        bool
	openMonitor     bool
	openDebug       bool
	openInitScripts []string
)

var openCmd = &cobra.Command{
	Use:   "open <url|file>",
	Short: "Open a URL or an HTML file in a window",
	Long: `Open a URL in a new window.

With --html the argument is a local file whose contents are loaded as the
page. Files next to it are served from the wkview:// scheme.

Examples:
  wkview open https://example.com
  wkview open --html ./page.html --monitor`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().BoolVar(&openHTML, "html", false, "treat the argument as an HTML file")
	openCmd.Flags().BoolVarP(&openMonitor, "monitor", "m", false, "follow navigation and messages in the terminal")
	openCmd.Flags().BoolVar(&openDebug, "debug", false, "enable the web inspector")
	openCmd.Flags().StringArrayVar(&openInitScripts, "init-script", nil, "script file injected at document start (repeatable)")
}

func runOpen(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if openDebug {
		app.Config.WebView.Debug = true
	}
	app.Config.WebView.InitScripts = append(app.Config.WebView.InitScripts, openInitScripts...)

	session := cli.Session{
		Target:  webview.URL(args[0]),
		Label:   args[0],
		Monitor: openMonitor,
	}
	if openHTML {
		markup, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		session.Target = webview.HTML(string(markup))
		session.Label = filepath.Base(args[0])
		session.Requests = webview.NewDirHandler(os.DirFS(filepath.Dir(args[0])))
	}

	return cli.RunSession(app, session)
}
