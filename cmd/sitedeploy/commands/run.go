package commands

import "git.home.luguber.info/inful/sitedeploy/internal/logfields"

// RunCmd implements the default 'run' command.
type RunCmd struct{}

func (r *RunCmd) Run(g *Global, _ *CLI) (err error) {
	a, err := g.NewApp("run")
	if err != nil {
		return err
	}
	defer g.closeApp(a, &err)

	g.Logger.Info("Starting run",
		logfields.RunID(a.RunID()),
		logfields.DryRun(g.Settings.DryRun),
		logfields.Path(g.Root))
	g.ExitCode, err = a.Run(g.Context)
	return err
}

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, _ *CLI) (err error) {
	a, err := g.NewApp("build")
	if err != nil {
		return err
	}
	defer g.closeApp(a, &err)

	g.ExitCode, err = a.BuildOnly(g.Context)
	return err
}

// DeployCmd implements the 'deploy' command.
type DeployCmd struct{}

func (d *DeployCmd) Run(g *Global, _ *CLI) (err error) {
	a, err := g.NewApp("deploy")
	if err != nil {
		return err
	}
	defer g.closeApp(a, &err)

	g.ExitCode, err = a.DeployOnly(g.Context)
	return err
}

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(g *Global, _ *CLI) (err error) {
	a, err := g.NewApp("clean")
	if err != nil {
		return err
	}
	defer g.closeApp(a, &err)

	return a.Clean()
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(g *Global, _ *CLI) (err error) {
	a, err := g.NewApp("watch")
	if err != nil {
		return err
	}
	defer g.closeApp(a, &err)

	g.Logger.Info("Watching for changes (Ctrl+C to stop)", logfields.Path(g.Root))
	return a.Watch(g.Context)
}
