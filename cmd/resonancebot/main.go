// Command resonancebot publishes the Tomsk Schumann resonance spectrograms to
// a Telegram channel on a schedule aligned to midnight in the reference zone.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Embedded zone database so display zones resolve on minimal images.
	_ "time/tzdata"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
