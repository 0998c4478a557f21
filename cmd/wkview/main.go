package main

import (
	"context"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/bnema/wkview/internal/build"
	"github.com/bnema/wkview/internal/cli/cmd"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// AppKit only runs its event loop on the thread that started the process.
func init() {
	runtime.LockOSThread()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.SetBuildInfo(build.Current(version, commit, buildDate))
	cmd.Execute(ctx)
}
