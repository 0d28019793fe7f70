package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/careers-crawler/internal/app"
	"github.com/JakeFAU/careers-crawler/internal/sites"
)

// defaultMaxPages is the listing-page budget when --max-pages is not given.
const defaultMaxPages = 2

type crawlOptions struct {
	company    string
	siteConfig string
	maxPages   int
	output     string
}

func newCrawlCmd(root *rootOptions) *cobra.Command {
	opts := &crawlOptions{}
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl one company's careers site and print the postings as JSON",
		Long: `Crawls the site named by --company (looked up in the site registry) or
described by --config, following up to --max-pages listing pages. The records
are written as an indented JSON array to stdout or --output. An interrupted
crawl still writes what it gathered.`,
		Example: `  careers-crawler crawl --company Google --max-pages 3
  careers-crawler crawl --config acme.yaml --output acme.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.company, "company", "c", "", "company name from the site registry")
	cmd.Flags().StringVar(&opts.siteConfig, "config", "", "path to a site config file (overrides --company)")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", defaultMaxPages, "maximum number of listing pages to crawl")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write results to this file instead of stdout")
	return cmd
}

func runCrawl(cmd *cobra.Command, root *rootOptions, opts *crawlOptions) error {
	cfg, logger, err := root.setup()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	site, err := sites.Resolve(application.Registry(), opts.company, opts.siteConfig)
	if err != nil {
		if sites.IsConfigurationError(err) {
			logger.Error("no usable site configuration", zap.Error(err))
		}
		return err
	}

	result, err := application.Runner().Run(ctx, site, opts.maxPages)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("crawl %s: %w", site.DisplayName(), err)
		}
		logger.Warn("crawl interrupted; writing partial results", zap.Int("records", len(result.Records)))
	}

	data, err := app.EncodeRecords(result.Records)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return err
	}
	logger.Info("crawl complete",
		zap.String("site", result.Site),
		zap.String("run_id", result.RunID),
		zap.Int("records", len(result.Records)),
		zap.String("stop_reason", string(result.StopReason)),
	)
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	data = append(data, '\n')
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
