package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/wkview/internal/build"
	"github.com/bnema/wkview/internal/cli/styles"
)

func TestRenderVersion(t *testing.T) {
	out := renderVersion(styles.NewTheme(), build.Info{
		Version:   "v1.2.3",
		Commit:    "abc1234",
		BuildDate: "2026-01-02",
		GoVersion: "go1.25.3",
	})

	for _, want := range []string{"v1.2.3", "abc1234", "2026-01-02", "go1.25.3", build.RepoURL()} {
		assert.Contains(t, out, want)
	}
}

func TestRenderVersion_DefaultsToDev(t *testing.T) {
	assert.Contains(t, renderVersion(styles.NewTheme(), build.Info{}), "dev")
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"open", "serve", "config", "version"} {
		assert.True(t, names[want], want)
	}
}
