package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/wkview/internal/cli"
	"github.com/bnema/wkview/internal/wk"
	"github.com/bnema/wkview/pkg/webview"
)

var (
	serveWatch   bool
	serveMonitor bool
	serveIndex   string
)

var serveCmd = &cobra.Command{
	Use:   "serve <dir>",
	Short: "Show a local directory through the wkview:// scheme",
	Long: `Serve a directory to a new window.

Files are answered from the in-app wkview:// scheme, so the page needs no
HTTP server. Directory requests serve the index file. With --watch the page
reloads whenever a file under the directory changes.

Examples:
  wkview serve ./site
  wkview serve ./site --watch --monitor`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload the page when files change")
	serveCmd.Flags().BoolVarP(&serveMonitor, "monitor", "m", false, "follow navigation, messages and reloads in the terminal")
	serveCmd.Flags().StringVar(&serveIndex, "index", "", "file served for directory requests")
}

func runServe(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}

	handler := webview.NewDirHandler(os.DirFS(root))
	handler.Index = app.Config.Serve.Index
	if serveIndex != "" {
		handler.Index = serveIndex
	}

	session := cli.Session{
		Target:   webview.URL(wk.BaseURL + "localhost/"),
		Label:    root,
		Requests: handler,
		Monitor:  serveMonitor,
	}
	if serveWatch || app.Config.Serve.Watch {
		session.WatchDir = root
	}

	return cli.RunSession(app, session)
}
