// Package commands implements the sitedeploy command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitedeploy/internal/app"
	"git.home.luguber.info/inful/sitedeploy/internal/config"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
	"git.home.luguber.info/inful/sitedeploy/internal/project"
	"git.home.luguber.info/inful/sitedeploy/internal/sites"
)

// Global is the state shared by every command once flags are parsed.
type Global struct {
	Context  context.Context
	Root     string
	Settings config.Settings
	Logger   *slog.Logger
	Stdout   io.Writer
	Stderr   io.Writer

	// Runner and Sites replace the rsync runner and the shipped sites in tests.
	Runner deploy.Runner
	Sites  []sites.Site
	// FindRoot locates the project root when Root is empty;
	// project.FindRootFromWorkingDir when nil.
	FindRoot func() (string, error)

	// ExitCode is the status reported when a command returns no error.
	ExitCode int
}

// NewApp builds an App for command from the resolved settings.
func (g *Global) NewApp(command string) (*app.App, error) {
	return app.New(app.Options{
		Root:     g.Root,
		Settings: g.Settings,
		Command:  command,
		Stdout:   g.Stdout,
		Logger:   g.Logger,
		Runner:   g.Runner,
		Sites:    g.Sites,
	})
}

// closeApp closes a and folds a close failure into err.
func (g *Global) closeApp(a *app.App, err *error) {
	if cerr := a.Close(); cerr != nil {
		if *err == nil {
			*err = cerr
			return
		}
		g.Logger.Warn("Failed to close run", logfields.Error(cerr))
	}
}

// CLI definition & global flags. Every flag can also be set through its
// STATIC_WEBSITES_BUILDER_* environment variable.
type CLI struct {
	Config       string   `short:"c" help:"Configuration file path (default: sitedeploy.yaml in the project root)" env:"STATIC_WEBSITES_BUILDER_CONFIG"`
	Verbosity    *int     `short:"v" help:"Verbosity: -1 quiet, 0 info (debug on dry runs), 1 debug, 2 trace" env:"STATIC_WEBSITES_BUILDER_VERBOSITY"`
	DryRun       *bool    `name:"dry-run" help:"Transfer with rsync --dry-run and remove the deploy tree afterwards" env:"STATIC_WEBSITES_BUILDER_DRY_RUN"`
	Minify       *bool    `help:"Minify rendered HTML pages (default true)" env:"STATIC_WEBSITES_BUILDER_MINIFY"`
	LogFormat    string   `name:"log-format" help:"Log format (text|json)" env:"STATIC_WEBSITES_BUILDER_LOG_FORMAT"`
	Sites        []string `help:"Only process these sites" sep:"," env:"STATIC_WEBSITES_BUILDER_SITES"`
	RemoteIP     string   `name:"remote-ip" help:"Remote host name or address" env:"STATIC_WEBSITES_BUILDER_REMOTE_IP"`
	RemoteUser   string   `name:"remote-username" help:"Remote login name" env:"STATIC_WEBSITES_BUILDER_REMOTE_USERNAME"`
	RemoteDir    string   `name:"remote-directory" help:"Remote base directory" env:"STATIC_WEBSITES_BUILDER_REMOTE_DIRECTORY"`
	IdentityFile string   `name:"identity-file" help:"SSH private key passed to ssh -i" env:"STATIC_WEBSITES_BUILDER_REMOTE_IDENTITY_FILE"`
	HistoryDB    string   `name:"history-db" help:"SQLite run history database" env:"STATIC_WEBSITES_BUILDER_HISTORY_DB"`
	MetricsFile  string   `name:"metrics-file" help:"Prometheus textfile written after each run" env:"STATIC_WEBSITES_BUILDER_METRICS_FILE"`

	Run     RunCmd     `cmd:"" default:"1" help:"Build and deploy every site (default)"`
	Build   BuildCmd   `cmd:"" help:"Build the sites into the deploy directory"`
	Deploy  DeployCmd  `cmd:"" help:"Deploy previously built sites"`
	Clean   CleanCmd   `cmd:"" help:"Remove the deploy directory"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild and redeploy when project files change"`
	History HistoryCmd `cmd:"" help:"Show recent runs from the history database"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Overrides maps flags and environment variables onto config overrides.
func (c *CLI) Overrides() config.Overrides {
	return config.Overrides{
		DryRun:       c.DryRun,
		Verbosity:    c.Verbosity,
		Minify:       c.Minify,
		Host:         c.RemoteIP,
		Username:     c.RemoteUser,
		Directory:    c.RemoteDir,
		IdentityFile: c.IdentityFile,
		HistoryDB:    c.HistoryDB,
		MetricsFile:  c.MetricsFile,
		LogFormat:    c.LogFormat,
		Sites:        c.Sites,
	}
}

// ConfigPath returns the configuration file to load.
func (c *CLI) ConfigPath(root string) string {
	if c.Config != "" {
		return c.Config
	}
	return filepath.Join(root, config.DefaultFileName)
}

// Prepare loads the configuration file and resolves the settings and logger.
func (c *CLI) Prepare(g *Global) error {
	cfg, err := config.LoadOptional(c.ConfigPath(g.Root))
	if err != nil {
		return err
	}
	settings, err := config.Resolve(cfg, c.Overrides(), g.Root)
	if err != nil {
		return err
	}
	g.Settings = settings
	g.Logger = logging.New(g.Stderr, settings.Verbosity, settings.LogFormat)
	return nil
}

// rootless lists the commands that need neither a project root nor configuration.
var rootless = map[string]bool{"version": true}

// Main parses args, runs the selected command and returns the process exit status.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, &Global{Stdout: stdout, Stderr: stderr})
}

func run(ctx context.Context, args []string, g *Global) int {
	g.Context = ctx
	adapter := errors.NewCLIErrorAdapter(false, logging.Discard())

	// A missing root only fails commands that need one, after parsing, so help and
	// version work anywhere.
	var rootErr error
	if g.Root == "" {
		find := g.FindRoot
		if find == nil {
			find = project.FindRootFromWorkingDir
		}
		g.Root, rootErr = find()
	}
	if rootErr == nil {
		if _, err := config.LoadDotEnv(g.Root); err != nil {
			return adapter.Report(g.Stderr, err)
		}
	}

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("sitedeploy"),
		kong.Description("Render the static websites and deploy them with rsync."),
		kong.Writers(g.Stdout, g.Stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return adapter.Report(g.Stderr, errors.WrapError(err, errors.CategoryInternal, "invalid command line definition").Build())
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return adapter.Report(g.Stderr, errors.WrapError(err, errors.CategoryValidation, err.Error()).Build())
	}

	if rootless[kctx.Command()] {
		g.Logger = logging.Discard()
		if err := kctx.Run(g, &cli); err != nil {
			return adapter.Report(g.Stderr, err)
		}
		return g.ExitCode
	}
	if rootErr != nil {
		return adapter.Report(g.Stderr, rootErr)
	}

	if err := cli.Prepare(g); err != nil {
		return adapter.Report(g.Stderr, err)
	}
	slog.SetDefault(g.Logger)
	adapter = errors.NewCLIErrorAdapter(g.Settings.Verbosity >= logging.VerbosityDebug, g.Logger)

	if err := kctx.Run(g, &cli); err != nil {
		return adapter.Report(g.Stderr, err)
	}
	return g.ExitCode
}
