package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/app/watch"
	"github.com/slok/ttdproj/internal/projection"
	"github.com/slok/ttdproj/internal/storage/sqlite"
)

// WatchCommand prints a new projection every time the stored progress or estimate changes.
type WatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	flags    projectFlags
	interval time.Duration
}

// NewWatchCommand returns the watch command.
func NewWatchCommand(rootCmd *RootCommand, app *kingpin.Application) *WatchCommand {
	c := &WatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("watch", "Keep projecting while new progress and estimates are imported.")
	c.flags.register(c.Cmd)
	c.Cmd.Flag("interval", "Polling interval.").Default(watch.DefaultInterval.String()).DurationVar(&c.interval)

	return c
}

func (c WatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c WatchCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	projector, err := project.NewService(project.ServiceConfig{
		Repository: repo,
		Cache:      &projection.Cache{},
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create project service: %w", err)
	}

	svc, err := watch.NewService(watch.ServiceConfig{
		Projector: projector,
		Interval:  c.interval,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p := newPrinter(c.flags.format, c.rootCmd.Stdout)
	err = svc.Run(ctx, watch.Request{
		Project: c.flags.request(),
		OnUpdate: func(_ context.Context, res project.Result) error {
			return p.PrintProjection(c.flags.sample(res))
		},
	})
	if err != nil {
		return fmt.Errorf("could not watch: %w", err)
	}

	return nil
}
