package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/wkview/internal/build"
	"github.com/bnema/wkview/internal/cli/styles"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(renderVersion(styles.NewTheme(), buildInfo))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func renderVersion(t *styles.Theme, info build.Info) string {
	version := info.Version
	if version == "" {
		version = "dev"
	}

	lines := []string{
		t.Badge.Render("wkview") + " " + t.Highlight.Render(version),
		"",
		t.KeyValue("commit", info.Commit),
		t.KeyValue("built", info.BuildDate),
		t.KeyValue("go", info.GoVersion),
		t.KeyValue("repo", build.RepoURL()),
	}
	return t.Box.Render(strings.Join(lines, "\n"))
}
