package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/ttdproj/internal/app/estimateimport"
	"github.com/slok/ttdproj/internal/app/estimatelist"
	storageio "github.com/slok/ttdproj/internal/storage/io"
	"github.com/slok/ttdproj/internal/storage/sqlite"
)

// NewEstimateCommand returns the estimate parent command.
func NewEstimateCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("estimate", "Manage merge estimates.")
}

// EstimateImportCommand imports a merge estimate file.
type EstimateImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path string
}

// NewEstimateImportCommand returns the estimate import command.
func NewEstimateImportCommand(rootCmd *RootCommand, estimateCmd *kingpin.CmdClause) *EstimateImportCommand {
	c := &EstimateImportCommand{rootCmd: rootCmd}

	c.Cmd = estimateCmd.Command("import", "Import a merge estimate (YAML or JSON).")
	c.Cmd.Arg("file", "Merge estimate file.").Required().StringVar(&c.path)

	return c
}

func (c EstimateImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c EstimateImportCommand) Run(ctx context.Context) error {
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

	svc, err := estimateimport.NewService(estimateimport.ServiceConfig{
		Loader:     loader,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	estimate, err := svc.Run(ctx, estimateimport.Request{Path: file})
	if err != nil {
		return fmt.Errorf("could not import estimate: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Merge estimate imported successfully!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:           %s\n", estimate.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Target:       %s\n", estimate.EstimatedDateTime)
	fmt.Fprintf(c.rootCmd.Stdout, "  Blocks:       %d -> %d\n", estimate.BlockNumber, estimate.EstimatedBlockNumber)

	return nil
}

// EstimateListCommand lists stored merge estimates.
type EstimateListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	limit  int
	format string
}

// NewEstimateListCommand returns the estimate list command.
func NewEstimateListCommand(rootCmd *RootCommand, estimateCmd *kingpin.CmdClause) *EstimateListCommand {
	c := &EstimateListCommand{rootCmd: rootCmd}

	c.Cmd = estimateCmd.Command("list", "List stored merge estimates, newest first.")
	c.Cmd.Flag("limit", "Maximum number of estimates, 0 lists all.").Default("0").IntVar(&c.limit)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c EstimateListCommand) Name() string { return c.Cmd.FullCommand() }

func (c EstimateListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := estimatelist.NewService(estimatelist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	estimates, err := svc.Run(ctx, estimatelist.Request{Limit: c.limit})
	if err != nil {
		return fmt.Errorf("could not list merge estimates: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintEstimateList(estimates); err != nil {
		return fmt.Errorf("could not print estimate list: %w", err)
	}

	return nil
}
