package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/database"
	"github.com/nao1215/biomail/internal/email"
	"github.com/nao1215/biomail/internal/input"
	"github.com/nao1215/biomail/internal/model"
	"github.com/nao1215/biomail/internal/pipeline"
	"github.com/nao1215/biomail/internal/report"
	"github.com/nao1215/biomail/internal/website"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	return newScrapeCmd(defaultDeps())
}

func newScrapeCmd(deps runtimeDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Collect contact emails for a list of handles",
		Long: `Scrape logs in, visits every handle of the input file in order and
collects verified contact emails.

With --source profile-bio the emails come from the profile bio and from
mail links on the profile page. With --source external-website the
website linked from the profile is downloaded and its visible text is
searched instead.

Rows (handle,email,source) are written once at the end of the run. When
nothing was found no file is created.

Examples:
  # Emails from profile bios
  biomail scrape --source profile-bio

  # Emails from linked websites, fetched through Tor, written as JSON
  biomail scrape --source external-website --tor -o emails.json

  # Watch the browser while it works
  biomail scrape -s bio --headless=false -i handles.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrapeCmd(cmd, deps)
		},
	}

	cmd.Flags().StringP("source", "s", "",
		"Where to look for emails: profile-bio or external-website (required)")
	cmd.Flags().StringP("input", "i", config.DefaultInputFile,
		"File with one handle per line")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Result file (not created when nothing is found)")
	cmd.Flags().StringP("format", "f", "",
		"Output format: csv, json or markdown (default: from the output extension)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .biomail in current or home directory)")
	cmd.Flags().Bool("headless", true,
		"Run the browser without a window")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy (host:port) for external website requests")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon for external website requests")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	_ = cmd.MarkFlagRequired("source") //nolint:errcheck // flag is defined above

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, deps runtimeDeps) error {
	cfg, err := buildScrapeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cfg, deps, cmd.OutOrStdout(), logger)
}

// buildScrapeConfig creates a Config from the config file and the flags.
func buildScrapeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadBaseConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	sourceName, err := flags.GetString("source")
	if err != nil {
		return nil, err
	}
	if cfg.Source, err = model.ParseSource(sourceName); err != nil {
		return nil, err
	}

	if cfg.InputFile, err = flags.GetString("input"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runScrape performs a complete run. Credentials and the handle list are
// checked before anything touches the network.
func runScrape(ctx context.Context, cfg *config.Config, deps runtimeDeps, out io.Writer, logger *slog.Logger) error {
	creds, err := deps.credentials()
	if err != nil {
		return err
	}

	handles, err := input.ReadHandles(cfg.InputFile)
	if errors.Is(err, input.ErrNoHandles) {
		logger.Warn("no handles found in input", "input", cfg.InputFile)
		logger.Info("no data")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read handles: %w", err)
	}
	format, err := report.ResolveFormat(cfg.Format, cfg.OutputFile)
	if err != nil {
		return err
	}

	logger.Info("starting scrape",
		"source", cfg.Source,
		"handles", len(handles),
		"input", cfg.InputFile,
		"output", cfg.OutputFile,
		"account", creds,
	)

	svc, err := startServices(ctx, cfg, creds, deps, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("failed to shut down cleanly", "error", err)
		}
	}()

	var sites pipeline.WebsiteFetcher
	if cfg.Source == model.SourceExternalWebsite {
		sites = newWebsiteFetcher(cfg, svc, logger)
	}

	driver := pipeline.NewDriver(cfg.Source, svc.fetcher, sites,
		pipeline.WithDriverLogger(logger),
		pipeline.WithValidator(email.NewValidator(email.WithLogger(logger))),
	)
	run, runErr := driver.Run(ctx, handles)

	// The session is not needed for writing; release it first.
	if err := svc.Close(); err != nil {
		logger.Error("failed to shut down cleanly", "error", err)
	}

	finishRun(context.WithoutCancel(ctx), cfg, format, run, out, logger)

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, context.Canceled):
		return fmt.Errorf("run interrupted: %w", runErr)
	default:
		return fmt.Errorf("run aborted: %w", runErr)
	}
}

func newWebsiteFetcher(cfg *config.Config, svc *services, logger *slog.Logger) *website.Fetcher {
	opts := []website.Option{
		website.WithLogger(logger),
		website.WithTimeout(cfg.WebsiteTimeout),
		website.WithUserAgent(cfg.UserAgent),
		website.WithMaxBodySize(cfg.MaxBodySize),
		website.WithCloudflareBypass(cfg.CloudflareBypass),
	}
	if svc.proxy != nil {
		opts = append(opts, website.WithProxy(svc.proxy))
	}
	return website.NewFetcher(opts...)
}

// finishRun writes the result file, records the run and prints the summary.
// Failures here are logged so that the summary is always shown.
func finishRun(ctx context.Context, cfg *config.Config, format report.Format, run *model.Run, out io.Writer, logger *slog.Logger) {
	switch err := report.WriteFile(cfg.OutputFile, format, run); {
	case errors.Is(err, report.ErrNoRows):
		logger.Info("no data")
	case err != nil:
		logger.Error("failed to write results", "path", cfg.OutputFile, "error", err)
	default:
		logger.Info("results written",
			"path", cfg.OutputFile,
			"format", format,
			"rows", len(run.Rows),
		)
	}

	if cfg.SaveHistory {
		saveHistory(ctx, cfg.DBDir, run, logger)
	}

	if _, err := report.NewSummaryWriter(out).Write(run); err != nil {
		logger.Error("failed to print summary", "error", err)
	}
}

func saveHistory(ctx context.Context, dir string, run *model.Run, logger *slog.Logger) {
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		logger.Warn("history database unavailable", "dir", dir, "error", err)
		return
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Debug("run recorded", "id", id, "path", db.Path())
}
