package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/ttdproj/internal/app/progressimport"
	"github.com/slok/ttdproj/internal/app/progresslist"
	storageio "github.com/slok/ttdproj/internal/storage/io"
	"github.com/slok/ttdproj/internal/storage/sqlite"
)

// NewProgressCommand returns the progress parent command.
func NewProgressCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("progress", "Manage historical progress snapshots.")
}

// ProgressImportCommand imports a historical progress series file.
type ProgressImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path string
}

// NewProgressImportCommand returns the progress import command.
func NewProgressImportCommand(rootCmd *RootCommand, progressCmd *kingpin.CmdClause) *ProgressImportCommand {
	c := &ProgressImportCommand{rootCmd: rootCmd}

	c.Cmd = progressCmd.Command("import", "Import a historical progress series (YAML or JSON).")
	c.Cmd.Arg("file", "Progress series file.").Required().StringVar(&c.path)

	return c
}

func (c ProgressImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProgressImportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	loader, file, err := storageio.NewFileRepositoryForPath(c.path)
	if err != nil {
		return err
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := progressimport.NewService(progressimport.ServiceConfig{
		Loader:     loader,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	snapshot, err := svc.Run(ctx, progressimport.Request{Path: file})
	if err != nil {
		return fmt.Errorf("could not import progress: %w", err)
	}

	last, _ := snapshot.Series.Last()
	fmt.Fprintf(c.rootCmd.Stdout, "Progress snapshot imported successfully!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:           %s\n", snapshot.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Points:       %d\n", len(snapshot.Series))
	fmt.Fprintf(c.rootCmd.Stdout, "  Last point:   %s (%.4f%%)\n", last.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"), last.Percent)

	return nil
}

// ProgressListCommand lists stored progress snapshots.
type ProgressListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	limit  int
	format string
}

// NewProgressListCommand returns the progress list command.
func NewProgressListCommand(rootCmd *RootCommand, progressCmd *kingpin.CmdClause) *ProgressListCommand {
	c := &ProgressListCommand{rootCmd: rootCmd}

	c.Cmd = progressCmd.Command("list", "List stored progress snapshots, newest first.")
	c.Cmd.Flag("limit", "Maximum number of snapshots, 0 lists all.").Default("0").IntVar(&c.limit)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ProgressListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProgressListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := progresslist.NewService(progresslist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	snapshots, err := svc.Run(ctx, progresslist.Request{Limit: c.limit})
	if err != nil {
		return fmt.Errorf("could not list progress snapshots: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintSnapshotList(snapshots); err != nil {
		return fmt.Errorf("could not print snapshot list: %w", err)
	}

	return nil
}
