package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/email"
	"github.com/nao1215/biomail/internal/input"
	"github.com/nao1215/biomail/internal/instagram"
	"github.com/nao1215/biomail/internal/model"
	"github.com/nao1215/biomail/internal/report"
)

// NewProfileCmd creates the profile command.
func NewProfileCmd() *cobra.Command {
	return newProfileCmd(defaultDeps())
}

func newProfileCmd(deps runtimeDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile <handle>...",
		Short: "Print the profile snapshot of one or more handles",
		Long: `Profile logs in and prints what biomail sees on each profile page:
display name, bio, website, category, follower counts, mail links and
the verified emails found in the bio.

It is useful for checking the selector chains after the page markup
changed. Handles that do not exist are reported and skipped.

Examples:
  biomail profile natgeo
  biomail profile --json @natgeo nasa`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileCmd(cmd, args, deps)
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Print the snapshots as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .biomail in current or home directory)")
	cmd.Flags().Bool("headless", true, "Run the browser without a window")

	return cmd
}

func runProfileCmd(cmd *cobra.Command, args []string, deps runtimeDeps) error {
	cfg, err := loadBaseConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Selectors.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	handles, err := input.ParseHandles(strings.NewReader(strings.Join(args, "\n")))
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, err := fetchProfiles(ctx, cfg, deps, handles, logger)
	if len(profiles) > 0 {
		if werr := printProfiles(cmd.OutOrStdout(), profiles, asJSON); werr != nil {
			return werr
		}
	}
	return err
}

// fetchProfiles logs in once and reads every handle in order. Missing
// profiles are skipped; a session failure stops the loop and returns the
// snapshots read so far.
func fetchProfiles(ctx context.Context, cfg *config.Config, deps runtimeDeps, handles []string, logger *slog.Logger) ([]model.Profile, error) {
	creds, err := deps.credentials()
	if err != nil {
		return nil, err
	}

	// Profile lookups never use the website proxy.
	cfg.Source = model.SourceProfileBio
	svc, err := startServices(ctx, cfg, creds, deps, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("failed to shut down cleanly", "error", err)
		}
	}()

	validator := email.NewValidator(email.WithLogger(logger))
	profiles := make([]model.Profile, 0, len(handles))
	for _, handle := range handles {
		p, err := svc.fetcher.FetchProfile(ctx, handle)
		if errors.Is(err, instagram.ErrNotFound) {
			logger.Warn("profile not found", "handle", handle)
			continue
		}
		if err != nil {
			return profiles, err
		}
		p.Emails = validator.NormalizeAndVerify(email.Extract(p.Bio))
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func printProfiles(out io.Writer, profiles []model.Profile, asJSON bool) error {
	if asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).Encode(profiles)
		return err
	}

	for _, p := range profiles {
		t := report.NewTable()
		t.SetTitle("@%s", p.Handle)
		t.AppendRows([]table.Row{
			{"URL", p.URL},
			{"Name", orDash(p.DisplayName)},
			{"Category", orDash(p.Category)},
			{"Bio", orDash(p.Bio)},
			{"Website", orDash(p.Website)},
			{"Followers", orDash(p.Followers)},
			{"Following", orDash(p.Following)},
			{"Posts", orDash(p.Posts)},
			{"Mail links", orDash(strings.Join(p.MailLinks, ", "))},
			{"Bio emails", orDash(strings.Join(p.Emails, ", "))},
		})
		if _, err := fmt.Fprintln(out, t.Render()); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
