package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/portalscan/portalscan/internal/archive"
	"github.com/portalscan/portalscan/internal/browser"
	"github.com/portalscan/portalscan/internal/config"
	"github.com/portalscan/portalscan/internal/crawler"
	"github.com/portalscan/portalscan/internal/database"
	"github.com/portalscan/portalscan/internal/log"
	"github.com/portalscan/portalscan/internal/model"
)

// NewMapCmd creates the map command.
func NewMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map [url]",
		Short: "Log in and archive every reachable page of a portal",
		Long: `Map logs in to the target portal with a headless browser, then walks the
portal breadth-first from the start URL, saving each page's rendered HTML
and a full-page screenshot under a new run directory. The site map
(mapping.json) is flushed after every page, so an interrupted run still
leaves a usable archive.

Credentials are taken from --email plus --password, or the
PORTALSCAN_PASSWORD environment variable. When no credentials are given
the portal is mapped unauthenticated.

Examples:
  # Map an authenticated portal, 3 levels deep
  portalscan map https://pay.example.com --email user@example.com

  # Shallow anonymous map with a larger page budget
  portalscan map https://pay.example.com -d 1 -p 200`,
		Args: cobra.ExactArgs(1),
		RunE: runMap,
	}

	cmd.Flags().StringP("email", "e", "", "Account email for the login step")
	cmd.Flags().String("password", "", "Account password (or set PORTALSCAN_PASSWORD)")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth, "Maximum crawl depth from the start URL")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages, "Maximum number of pages to archive")
	cmd.Flags().Bool("allow-external", false, "Follow links to other origins")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout, "Per-page navigation timeout")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Pause between page fetches")
	cmd.Flags().Int("max-failures", config.DefaultMaxConsecutiveFailures, "Consecutive fetch failures before aborting the run")
	cmd.Flags().String("data-dir", "", "Directory for run archives (default: XDG data dir)")
	cmd.Flags().Bool("headful", false, "Show the browser window instead of running headless")
	cmd.Flags().StringP("config", "c", "", "Path to the .portalscan site configuration file")
	cmd.Flags().Bool("no-db", false, "Skip recording the run in the history database")

	return cmd
}

// runMap executes the map command.
func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := buildMapConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateMap(); err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupts so a cancelled run still finalizes its site map.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, finishing the current page...")
		cancel()
	}()

	startURL := crawler.NormalizeURL(cfg.StartURL)
	siteCfg := siteConfigFor(cfg, startURL)
	if siteCfg.Depth != 0 && !cmd.Flags().Changed("depth") {
		cfg.MaxDepth = siteCfg.Depth
	}

	if cfg.RunID == "" {
		cfg.RunID = archive.NewRunID()
	}
	runDir := archive.RunDir(cfg.DataDir, cfg.RunID)

	siteMap := model.NewSiteMap(cfg.RunID, startURL, cfg.MaxDepth, cfg.MaxPages, cfg.AllowExternal)
	writer, err := archive.NewWriter(runDir, siteMap, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Mapping %s\n", startURL)
	fmt.Fprintf(cmd.OutOrStdout(), "Run directory: %s\n\n", runDir)

	session, err := browser.NewChromeSession(ctx, browser.SessionOptions{
		Headful:         cfg.Headful,
		NavigateTimeout: cfg.FetchTimeout,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer session.Close() //nolint:errcheck // best-effort browser teardown

	if cfg.Email != "" {
		if err := login(ctx, session, cfg, siteCfg, startURL); err != nil {
			// Record the aborted run so "history" shows the failed attempt.
			_ = writer.Finalize(model.CrawlStatusError, "login failed: "+err.Error())
			saveRunHistory(ctx, cfg, siteMap, runDir, logger)
			return fmt.Errorf("login failed: %w", err)
		}
	}

	c := crawler.New(session, writer, crawler.Options{
		MaxDepth:               cfg.MaxDepth,
		MaxPages:               cfg.MaxPages,
		AllowExternal:          cfg.AllowExternal,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		Delay:                  cfg.CrawlDelay,
		IgnorePatterns:         siteCfg.IgnorePatterns,
		FollowPatterns:         siteCfg.FollowPatterns,
		Logger:                 logger,
	})

	summary, crawlErr := c.Crawl(ctx, startURL)
	if summary != nil {
		printMapSummary(cmd, summary, runDir)
		saveRunHistory(ctx, cfg, siteMap, runDir, logger)
	}
	return crawlErr
}

// buildMapConfig creates a Config from the map command flags.
func buildMapConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.StartURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.Email, err = cmd.Flags().GetString("email"); err != nil {
		return nil, err
	}
	if cfg.Secret, err = cmd.Flags().GetString("password"); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("PORTALSCAN_PASSWORD")
	}
	if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.AllowExternal, err = cmd.Flags().GetBool("allow-external"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.MaxConsecutiveFailures, err = cmd.Flags().GetInt("max-failures"); err != nil {
		return nil, err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cfg.Headful, err = cmd.Flags().GetBool("headful"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	if err := loadSiteFile(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSiteFile loads the .portalscan site configuration when present.
// A missing file is only an error when the user named it explicitly.
func loadSiteFile(cmd *cobra.Command, cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	sites, err := config.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && cfg.ConfigFilePath == "" {
			return nil
		}
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	cfg.Sites = sites
	fmt.Fprintf(cmd.ErrOrStderr(), "Loaded site configuration from %s\n", path)
	return nil
}

// siteConfigFor resolves the per-portal configuration for the start URL's
// host. Returns a zero value when no site file is loaded.
func siteConfigFor(cfg *config.Config, startURL string) config.SiteConfig {
	if cfg.Sites == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(startURL)
	if err != nil {
		return config.SiteConfig{}
	}
	return cfg.Sites.GetSiteConfig(u.Hostname())
}

// login submits the configured credentials through the browser session.
// The login page defaults to the start URL itself unless the site
// configuration names a separate login path.
func login(ctx context.Context, session *browser.ChromeSession, cfg *config.Config, siteCfg config.SiteConfig, startURL string) error {
	loginURL := startURL
	if siteCfg.LoginPath != "" {
		loginURL = crawler.Origin(startURL) + siteCfg.LoginPath
	}

	return browser.Login(ctx, session,
		browser.Credentials{Email: cfg.Email, Secret: cfg.Secret},
		browser.LoginOptions{
			LoginURL:         loginURL,
			EmailSelector:    siteCfg.EmailSelector,
			PasswordSelector: siteCfg.PasswordSelector,
			SubmitSelector:   siteCfg.SubmitSelector,
		},
	)
}

// printMapSummary prints the crawl outcome to stdout.
func printMapSummary(cmd *cobra.Command, summary *crawler.Summary, runDir string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nCrawl finished: %s\n", summary.Reason)
	fmt.Fprintf(out, "  Pages visited:  %d\n", summary.PagesVisited)
	fmt.Fprintf(out, "  Pages archived: %d\n", summary.PagesSucceeded)
	fmt.Fprintf(out, "  Pages failed:   %d\n", summary.PagesFailed)
	fmt.Fprintf(out, "\nArchive: %s\n", runDir)
	fmt.Fprintf(out, "Next: portalscan scan-archive %s\n", runDir)
}

// saveRunHistory records the run in the history database. History is an
// index over run directories, so failures here are logged, not fatal.
func saveRunHistory(ctx context.Context, cfg *config.Config, siteMap *model.SiteMap, runDir string, logger *slog.Logger) {
	if !cfg.SaveToDB {
		return
	}

	// A cancelled crawl arrives with a dead context; history still deserves
	// the row.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // read-mostly handle

	if err := db.SaveRun(saveCtx, siteMap, runDir); err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}
