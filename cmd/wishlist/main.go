package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aluiziolira/wishlist-watch/app"
	"github.com/aluiziolira/wishlist-watch/config"
	"github.com/aluiziolira/wishlist-watch/logging"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

type options struct {
	configPath string
	save       bool
	verbose    bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "invalid .env file: %v\n", err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(stderr, "usage error: %v\n\n%s", usage, cmd.UsageString())
		return exitUsage
	}
	fmt.Fprintln(stderr, app.UserMessage(err))
	return exitFailure
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "wishlist [file]",
		Short: "Report price changes and discounts on a book wishlist.",
		Long: `wishlist fetches the configured wishlist page (or reads a saved copy when a
file is given), prints the books whose price changed since the last run and
every book currently on discount, then saves the list for the next run.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return &usageError{msg: fmt.Sprintf("expected at most one file argument, got %d", len(args))}
			}
			if len(args) == 1 && opts.save {
				return &usageError{msg: "--save cannot be combined with a file argument"}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return run(cmd.Context(), opts, file, stdout)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	cmd.Flags().BoolVar(&opts.save, "save", false, "Also save the fetched page to the raw file before processing")
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath, "Configuration file (TOML)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func run(ctx context.Context, opts *options, file string, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return &app.ConfigError{Err: err}
	}

	logger, err := logging.New(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	watcher, err := app.New(cfg, logger, stdout)
	if err != nil {
		return err
	}

	src, err := watcher.SourceFor(file)
	if err != nil {
		return err
	}

	if _, err := watcher.Run(ctx, src, opts.save); err != nil {
		logger.Debug("run failed", zap.String("error_type", app.ErrorLabel(err)), zap.Error(err))
		return err
	}
	return nil
}
