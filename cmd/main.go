package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.3.0"

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{ConfigPath: "config.toml", Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "musicpal",
		Usage:    "Spotify companion: playlist genre summaries, recommendations, queueing and mood playlists",
		Version:  version,
		Flags:    rootFlags(),
		Before:   runner.configure,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
			os.Exit(130)
		}

		shared.CaptureError(err)
		shared.FlushTelemetry(2 * time.Second)
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}

	shared.FlushTelemetry(2 * time.Second)
}
