package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/ttdproj/cmd/ttdproj/commands"
	"github.com/slok/ttdproj/internal/log"
	loglogrus "github.com/slok/ttdproj/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("ttdproj", "Terminal total difficulty progress projection tool.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	projectCmd := commands.NewProjectCommand(rootCmd, app)
	watchCmd := commands.NewWatchCommand(rootCmd, app)

	// Progress subcommands share a parent command.
	progressCmd := commands.NewProgressCommand(app)
	progressImportCmd := commands.NewProgressImportCommand(rootCmd, progressCmd)
	progressListCmd := commands.NewProgressListCommand(rootCmd, progressCmd)

	// Estimate subcommands share a parent command.
	estimateCmd := commands.NewEstimateCommand(app)
	estimateImportCmd := commands.NewEstimateImportCommand(rootCmd, estimateCmd)
	estimateListCmd := commands.NewEstimateListCommand(rootCmd, estimateCmd)

	cmds := map[string]commands.Command{
		projectCmd.Name():        projectCmd,
		watchCmd.Name():          watchCmd,
		progressImportCmd.Name(): progressImportCmd,
		progressListCmd.Name():   progressListCmd,
		estimateImportCmd.Name(): estimateImportCmd,
		estimateListCmd.Name():   estimateListCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands that print tables or JSON are silent unless --debug, so logs
	// don't mix with the printed output.
	printerCommands := map[string]bool{
		"project":       true,
		"watch":         true,
		"progress list": true,
		"estimate list": true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Keep stdout for the printers.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
