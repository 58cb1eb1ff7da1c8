package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/webcrawl/internal/config"
	"github.com/nao1215/webcrawl/internal/crawler"
	"github.com/nao1215/webcrawl/internal/database"
	"github.com/nao1215/webcrawl/internal/log"
	"github.com/nao1215/webcrawl/internal/model"
	"github.com/nao1215/webcrawl/internal/report"
	"github.com/nao1215/webcrawl/internal/store"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url> [url...]",
		Short: "Crawl a website and archive its text and images",
		Long: `Crawl performs a breadth-first traversal starting from the seed URL.

It stays on the seed's origin, visits each page at most once, and stops
when the page budget or the depth bound is reached. For every page it
saves the visible text to a file and downloads the referenced images,
skipping images whose content was already downloaded this run.

Output is written to a dated directory (WebCrawlerData_YYYYMMDD) on
your desktop unless --output points elsewhere.

Examples:
  # Crawl with defaults (10 pages, depth 2)
  webcrawl crawl https://example.com

  # Crawl more pages, deeper
  webcrawl crawl --max-pages 50 --max-depth 3 https://example.com

  # Save output under a specific directory
  webcrawl crawl -o /tmp/archive https://example.com

  # Emit the run summary as JSON
  webcrawl crawl --json https://example.com

Configuration file (.webcrawl) example:
  hosts:
    example.com:
      depth: 3
      delay: 2s
      headers:
        Authorization: "Bearer token"
      ignorePatterns:
        - "/admin/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from the seed (0 = seed only)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness pause between page fetches")
	cmd.Flags().Int("image-workers", config.DefaultImageWorkers,
		"Concurrent image downloads per page")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("match-scheme", false,
		"Require links to match the seed's scheme, not just its host")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Base directory for crawl output (default: desktop)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webcrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the run summary to the specified file instead of stdout")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Interrupts cancel the crawl gracefully: the run stops at the next
	// page boundary and partial results are reported as usual.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current page...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.ImageWorkers, err = cmd.Flags().GetInt("image-workers")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MatchScheme, err = cmd.Flags().GetBool("match-scheme")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-host configuration from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Hosts, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Hosts = &config.File{
			Hosts: make(map[string]config.HostConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report-file")
	if err != nil {
		return nil, err
	}

	// Always record runs in the crawl database under the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes one crawl run per seed, sequentially.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	outputBase, err := resolveOutputDir(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxPages", cfg.MaxPages,
		"maxDepth", cfg.MaxDepth,
		"outputDir", outputBase,
	)

	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// The database is a convenience layer. A crawl should never
			// fail because the catalogue is unavailable.
			logger.Warn("failed to open crawl database, continuing without it", "error", err)
		} else {
			defer db.Close()
			logger.Info("crawl database opened", "dir", cfg.DBDir)
		}
	}

	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := crawlSeed(ctx, cfg, seed, outputBase, db, logger); err != nil {
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
		}
	}

	return nil
}

// crawlSeed runs one complete crawl for a single seed URL and emits its
// run summary.
func crawlSeed(ctx context.Context, cfg *config.Config, seed, outputBase string, db *database.CrawlDB, logger *slog.Logger) error {
	hostCfg := hostConfigForSeed(cfg, seed)

	storage, err := store.New(outputBase)
	if err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(hostCfg.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(hostCfg.Headers))
	}
	fetcher := crawler.NewFetcher(&http.Client{Timeout: cfg.Timeout}, fetcherOpts...)

	maxDepth := cfg.MaxDepth
	if hostCfg.Depth > 0 {
		maxDepth = hostCfg.Depth
	}
	delay := cfg.CrawlDelay
	if hostCfg.Delay > 0 {
		delay = hostCfg.Delay
	}
	matchScheme := cfg.MatchScheme
	if hostCfg.MatchScheme != nil {
		matchScheme = *hostCfg.MatchScheme
	}

	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxDepth(maxDepth),
		crawler.WithDelay(delay),
		crawler.WithImageWorkers(cfg.ImageWorkers),
		crawler.WithSpiderMatchScheme(matchScheme),
		crawler.WithLogger(logger),
	}
	if len(hostCfg.IgnorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(hostCfg.IgnorePatterns))
	}
	if len(hostCfg.FollowPatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithFollowPatterns(hostCfg.FollowPatterns))
	}
	if db != nil {
		spiderOpts = append(spiderOpts, crawler.WithRecorder(db.Recorder(seed)))
	}

	spider := crawler.NewSpider(fetcher, storage, spiderOpts...)

	fmt.Printf("Crawling %s...\n", seed)
	runReport := model.NewRunReport(seed)

	stats, err := spider.Crawl(ctx, seed)
	interrupted := err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
	if err != nil && !interrupted {
		return err
	}

	runReport.Finish(stats)
	runReport.StorageDir = storage.Root()
	runReport.Interrupted = interrupted

	if err := outputReport(cfg, runReport); err != nil {
		logger.Error("report failed", "seed", seed, "error", err)
	}

	if db != nil {
		// An interrupted run still gets recorded, so the insert must not
		// ride on the cancelled context.
		insertCtx := ctx
		if interrupted {
			insertCtx = context.Background()
		}
		if _, err := db.InsertRun(insertCtx, runReport); err != nil {
			logger.Error("failed to record run", "seed", seed, "error", err)
		}
	}

	return nil
}

// hostConfigForSeed resolves the per-host overrides for a seed URL.
func hostConfigForSeed(cfg *config.Config, seed string) config.HostConfig {
	if cfg.Hosts == nil {
		return config.HostConfig{}
	}
	u, err := url.Parse(seed)
	if err != nil || u.Host == "" {
		return cfg.Hosts.Defaults
	}
	return cfg.Hosts.GetHostConfig(u.Host)
}

// resolveOutputDir picks the base directory the run directory is created
// under: the --output flag, the desktop, or the home directory.
func resolveOutputDir(cfg *config.Config) (string, error) {
	if cfg.OutputDir != "" {
		return cfg.OutputDir, nil
	}
	if desktop := config.DesktopDir(); desktop != "" {
		return desktop, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine output directory: %w", err)
	}
	return home, nil
}

// outputReport renders the run summary in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	var output io.Writer = os.Stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(runReport)
	return err
}
