package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicpal/internal/services"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/desertthunder/musicpal/internal/tasks"
	"github.com/desertthunder/musicpal/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyService
	catalog    services.Catalog
	player     services.Player
	userAuth   bool
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	status     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog and Player default to ones backed by Spotify once authenticated.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    *services.SpotifyService
	Catalog    services.Catalog
	Player     services.Player
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
	Status     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		catalog:    opts.Catalog,
		player:     opts.Player,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		status:     opts.Status,
	}
}

// SetLogger replaces the logger used by the runner and the services it creates.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, summarizeCommand, playlistCommand, recommendCommand, queueCommand,
		gatherCommand, historyCommand, menuCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure resolves the config file, applies the verbosity flag and builds the Spotify service.
// It runs before any subcommand.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if err := shared.LoadEnv(); err != nil {
		r.logger.Warn("failed to load .env", "error", err)
	}

	config, err := shared.Resolve(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	if enabled, err := shared.InitTelemetry(config.Telemetry, cmd.Root().Version); err != nil {
		r.logger.Warn("failed to initialize error reporting", "error", err)
	} else if enabled {
		r.logger.Debug("error reporting enabled", "environment", config.Telemetry.Environment)
	}

	if r.spotify == nil && config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map(),
			services.WithTimeout(config.Summary.Timeout()),
			services.WithRateLimit(config.Summary.RequestsPerSecond),
			services.WithLogger(shared.WithLogger(r.logger, "service", "spotify")),
		)
		if err != nil {
			r.logger.Warn("spotify service unavailable", "error", err)
		} else {
			r.spotify = svc
		}
	}

	return ctx, nil
}

// runTask runs task, drawing its progress on the status writer, and writes its output.
func (r *Runner) runTask(ctx context.Context, task ui.Task) error {
	progress := make(chan tasks.ProgressUpdate)
	bar := ui.NewProgressBar(r.status, 40)

	done := make(chan struct{})
	go func() {
		bar.Consume(progress)
		close(done)
	}()

	output, err := task(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}
	return r.writePlain("%s", output)
}

// withReauth runs fn, and when it fails with an expired token, logs in again and retries once.
func (r *Runner) withReauth(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !errors.Is(err, shared.ErrTokenExpired) || r.spotify == nil {
		return err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...")
	if err := r.login(ctx, "reauthorization"); err != nil {
		return fmt.Errorf("reauthorization failed: %w", err)
	}
	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...")

	return fn()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.writeBytes(output)
}

// writeBytes writes already-encoded JSON followed by a newline.
func (r *Runner) writeBytes(output []byte) error {
	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
