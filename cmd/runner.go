package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/auth"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

// playlistAPI is everything the commands need from the remote service.
type playlistAPI interface {
	services.PlaylistService
	services.PlaylistLister
	Export(ctx context.Context, playlistID string, order models.Order) (*models.PlaylistExport, error)
}

var _ playlistAPI = (*services.YouTubeClient)(nil)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	service    playlistAPI
	authorizer auth.Authorizer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // Used when the --config file does not exist
	Logger     *log.Logger
	Output     io.Writer
	Service    playlistAPI     // Skips authorization and client construction when set
	Authorizer auth.Authorizer // Replaces the loopback consent flow
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

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		service:    opts.Service,
		authorizer: opts.Authorizer,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "plcopy",
		Usage:   "Copy a YouTube playlist into a new playlist on your account",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("PLCOPY_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		copyCommand, authCommand, playlistsCommand, playlistCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config file named by --config. A missing file keeps the current config.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	config, err := shared.LoadConfig(r.configPath)
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	case err != nil:
		return ctx, err
	default:
		r.config = config
	}
	return ctx, nil
}

// youtubeConfig applies the auth flags of cmd over the loaded config.
func (r *Runner) youtubeConfig(cmd *cli.Command) (shared.YouTubeConfig, shared.ServerConfig) {
	yt, srv := r.config.Credentials.YouTube, r.config.Server
	if v := cmd.String("secrets-file"); v != "" {
		yt.SecretsFile = v
	}
	if v := cmd.String("token-file"); v != "" {
		yt.TokenFile = v
	}
	if len(yt.Scopes) == 0 {
		yt.Scopes = []string{shared.YouTubeScope}
	}
	if v := cmd.String("auth-host"); v != "" {
		srv.Host = v
	}
	if cmd.IsSet("auth-port") {
		srv.Port = int(cmd.Int("auth-port"))
	}
	return yt, srv
}

// provider builds the credential provider from the client secrets and token file.
func (r *Runner) provider(cmd *cli.Command) (*auth.Provider, error) {
	yt, srv := r.youtubeConfig(cmd)

	oauthConfig, err := auth.LoadClientSecrets(yt.SecretsFile, yt.Scopes)
	if err != nil {
		return nil, err
	}

	authorizer := r.authorizer
	if authorizer == nil {
		flow := &auth.Flow{
			Host:    srv.Host,
			Port:    srv.Port,
			Output:  os.Stderr,
			Logger:  r.logger,
			Timeout: cmd.Duration("auth-timeout"),
		}
		if !cmd.Bool("no-browser") {
			flow.OpenBrowser = shared.OpenBrowser
		}
		authorizer = flow
	}

	return auth.NewProvider(oauthConfig, auth.NewFileStore(yt.TokenPath()), authorizer, r.logger), nil
}

// connect returns an authorized client, running consent first when the stored credential cannot be used.
func (r *Runner) connect(ctx context.Context, cmd *cli.Command) (playlistAPI, error) {
	if r.service != nil {
		return r.service, nil
	}

	provider, err := r.provider(cmd)
	if err != nil {
		return nil, err
	}

	cred, err := provider.Acquire(ctx, nil)
	if err != nil {
		return nil, err
	}

	return services.NewYouTubeClient(ctx, provider.TokenSource(ctx, cred), services.ClientOptions{
		PageSize: r.config.Copy.PageSize,
		Logger:   r.logger,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writeBytes(b []byte) error {
	if _, err := r.output.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
