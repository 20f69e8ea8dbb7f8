package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dropzone/internal/repositories"
	"github.com/desertthunder/dropzone/internal/services"
	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/desertthunder/dropzone/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	uploader   tasks.Uploader
	streamer   tasks.LogStreamer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Uploader and Streamer replace the HTTP services built from Config when set.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Uploader   tasks.Uploader
	Streamer   tasks.LogStreamer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		uploader:   opts.Uploader,
		streamer:   opts.Streamer,
	}
}

// app builds the root command. Running it without a subcommand opens the drop zone.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "dropzone",
		Usage:     "Drop a file to upload it, then follow the task's live log",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Backend base URL (overrides server.base_url)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.configure,
		Action:   r.UI,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		uiCommand, uploadCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config (when present) and applies --server and --verbose.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if cmd.IsSet("server") {
		r.config.Server.BaseURL = cmd.String("server")
		if err := r.config.Validate(); err != nil {
			return ctx, err
		}
	}

	level, err := shared.ParseLogLevel(r.config.Logging.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// SetLogger replaces the runner's logger, keeping the current level.
func (r *Runner) SetLogger(l *log.Logger) {
	shared.SetLogLevel(l, r.logger.GetLevel())
	r.logger = l
}

// newPipeline wires the upload and log stream services and, when history is enabled, the session recorder.
//
// The returned func releases the history database and must always be called.
func (r *Runner) newPipeline() (*tasks.Pipeline, func(), error) {
	opts := tasks.PipelineOpts{Uploader: r.uploader, Streamer: r.streamer, Logger: r.logger}
	if opts.Uploader == nil {
		opts.Uploader = services.NewUploadService(services.UploadOpts{
			URL:        r.config.UploadURL(),
			FieldName:  r.config.Upload.FieldName,
			RateLimit:  r.config.Upload.RateLimit,
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
	}
	if opts.Streamer == nil {
		opts.Streamer = services.NewLogStreamService(services.LogStreamOpts{
			URL:        r.config.LogsURL(),
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
	}

	release := func() {}
	if r.config.History.Enabled {
		db, err := r.openHistory()
		if err != nil {
			return nil, release, err
		}
		opts.Recorder = repositories.NewSessionRecorder(repositories.NewSessionRepository(db))
		release = func() { db.Close() }
	}

	return tasks.NewPipeline(opts), release, nil
}

// openHistory opens the history database and brings its schema up to date.
func (r *Runner) openHistory() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.History.MaxOpenConns, r.config.History.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

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
