package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/projection"
	"github.com/slok/ttdproj/internal/storage/sqlite"
)

// projectFlags are the flags shared by the commands that print projections.
type projectFlags struct {
	target        string
	includeTarget bool
	sampleEvery   time.Duration
	format        string
}

func (f *projectFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("target", "Override the estimated TTD instant (RFC 3339).").StringVar(&f.target)
	cmd.Flag("include-target", "Append the 100% point at the target.").BoolVar(&f.includeTarget)
	cmd.Flag("sample-every", "Only print projected points aligned to this duration (e.g. 1h), 0 prints all.").Default("0").DurationVar(&f.sampleEvery)
	formatFlag(cmd, &f.format)
}

func (f projectFlags) request() project.Request {
	return project.Request{
		Target:        f.target,
		IncludeTarget: f.includeTarget,
	}
}

// sample returns the result with the projected points downsampled for printing.
func (f projectFlags) sample(res project.Result) project.Result {
	res.Projected = projection.Downsample(res.Projected, f.sampleEvery)
	return res
}

// ProjectCommand prints the projection of the latest progress snapshot.
type ProjectCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	flags projectFlags
	at    string
}

// NewProjectCommand returns the project command.
func NewProjectCommand(rootCmd *RootCommand, app *kingpin.Application) *ProjectCommand {
	c := &ProjectCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("project", "Project the latest progress up to the estimated TTD instant.")
	c.flags.register(c.Cmd)
	c.Cmd.Flag("at", "Show the progress at this instant (RFC 3339).").StringVar(&c.at)

	return c
}

func (c ProjectCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	req := c.flags.request()
	if c.at != "" {
		at, err := model.ParseTimestamp(c.at)
		if err != nil {
			return fmt.Errorf("invalid at: %w", err)
		}
		req.At = &at
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := project.NewService(project.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not project: %w", err)
	}

	if err := newPrinter(c.flags.format, c.rootCmd.Stdout).PrintProjection(c.flags.sample(*res)); err != nil {
		return fmt.Errorf("could not print projection: %w", err)
	}

	return nil
}
