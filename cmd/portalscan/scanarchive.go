package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/portalscan/portalscan/internal/archive"
	"github.com/portalscan/portalscan/internal/config"
	"github.com/portalscan/portalscan/internal/database"
	"github.com/portalscan/portalscan/internal/extract"
	"github.com/portalscan/portalscan/internal/log"
	"github.com/portalscan/portalscan/internal/model"
	"github.com/portalscan/portalscan/internal/report"
)

// NewScanArchiveCmd creates the scan-archive command.
func NewScanArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan-archive [run-directory]",
		Short: "Extract payment identifiers from an archived run",
		Long: `Scan-archive runs the detector battery (cryptocurrency addresses, IBANs,
beneficiary and bank names) over every page of a finished mapping run.
The archive is read-only input: no network traffic, no modification of the
saved pages. Results are written to extraction_results.json inside the run
directory and printed as a report.

Examples:
  # Scan a run and print a text report
  portalscan scan-archive ~/.local/share/portalscan/20260826-153012-a3f9

  # JSON report written to a file
  portalscan scan-archive ./run-dir --json -o findings.json`,
		Args: cobra.ExactArgs(1),
		RunE: runScanArchive,
	}

	cmd.Flags().IntP("workers", "w", config.DefaultScanWorkers, "Number of pages scanned in parallel")
	cmd.Flags().Bool("json", false, "Output report in JSON format")
	cmd.Flags().Bool("markdown", false, "Output report in Markdown format")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Bool("no-db", false, "Skip recording findings in the history database")

	return cmd
}

// runScanArchive executes the scan-archive command.
func runScanArchive(cmd *cobra.Command, args []string) error {
	cfg, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateScan(); err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	siteMap, err := archive.LoadSiteMap(cfg.ArchiveDir)
	if err != nil {
		return err
	}

	engine := extract.NewEngine(
		extract.WithWorkers(cfg.ScanWorkers),
		extract.WithLogger(logger),
	)
	findings, err := engine.ScanArchive(ctx, cfg.ArchiveDir, siteMap)
	if err != nil {
		return err
	}

	if err := archive.WriteFindings(cfg.ArchiveDir, findings); err != nil {
		return err
	}

	saveScanHistory(ctx, cfg, siteMap, findings, logger)

	return outputReport(cmd, cfg, report.NewScanReport(siteMap, findings))
}

// buildScanConfig creates a Config from the scan-archive command flags.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ArchiveDir = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.ScanWorkers, err = cmd.Flags().GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// outputReport writes the report to stdout or the configured file.
func outputReport(cmd *cobra.Command, cfg *config.Config, scanReport *report.ScanReport) error {
	var out io.Writer = cmd.OutOrStdout()

	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		// Reports can carry live payment identifiers; keep them private.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close() //nolint:errcheck // write errors surface from Write below
		out = f
	}

	writer := selectReportWriter(out, cfg)
	if _, err := writer.Write(scanReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cfg.ReportFile)
	}
	return nil
}

// selectReportWriter picks the report format from the configuration.
func selectReportWriter(out io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// saveScanHistory refreshes the run row and stores the findings in the
// history database. Failures are logged, not fatal: the findings are
// already durable in the run directory.
func saveScanHistory(ctx context.Context, cfg *config.Config, siteMap *model.SiteMap, findings []model.Finding, logger *slog.Logger) {
	if !cfg.SaveToDB {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // read-mostly handle

	if err := db.SaveRun(saveCtx, siteMap, cfg.ArchiveDir); err != nil {
		logger.Warn("failed to record run history", "error", err)
		return
	}
	if err := db.SaveFindings(saveCtx, siteMap.RunID, findings); err != nil {
		logger.Warn("failed to record findings", "error", err)
	}
}
