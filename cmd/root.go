// Package cmd defines the careers-crawler command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/config"
	"github.com/JakeFAU/careers-crawler/internal/logging"
	"github.com/JakeFAU/careers-crawler/internal/sites"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	appConfig string
	envFile   string
	verbose   bool
}

// newRootCmd creates the root command and attaches every subcommand.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "careers-crawler",
		Short: "Crawls company career sites and extracts structured job postings.",
		Long: `careers-crawler walks a company's paginated careers listing, fetches every
posting it links to, and extracts title, required skills, years of experience,
seniority, and technical domain into JSON records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.appConfig, "app-config", "", "application config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newCrawlCmd(opts))
	cmd.AddCommand(newSitesCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// loadConfig reads the dotenv file and the application config.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(o.appConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setup loads the config and builds the logger for a subcommand.
func (o *rootOptions) setup() (config.Config, *zap.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Logging.Development, o.verbose)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var verr *sites.ValidationError
		if errors.As(err, &verr) {
			for _, problem := range verr.Problems {
				fmt.Fprintf(stderr, "  - %s\n", problem)
			}
		}
		return ExitError
	}
	return ExitOK
}

// syncLogger flushes the logger. Syncing a terminal stderr fails with EINVAL,
// so the error is dropped.
func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}
