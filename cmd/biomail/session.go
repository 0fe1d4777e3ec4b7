package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/biomail/internal/browser"
	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/instagram"
	"github.com/nao1215/biomail/internal/model"
	"github.com/nao1215/biomail/internal/tor"
)

// sessionLauncher opens the browser session used for the platform.
type sessionLauncher func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (browser.Session, error)

// credentialLoader returns the platform account.
type credentialLoader func() (config.Credentials, error)

// launchRod starts a local stealth Chromium.
func launchRod(ctx context.Context, cfg *config.Config, logger *slog.Logger) (browser.Session, error) {
	return browser.Launch(ctx,
		browser.WithHeadless(cfg.Headless),
		browser.WithUserAgent(cfg.UserAgent),
		browser.WithLogger(logger),
	)
}

func loadCredentials() (config.Credentials, error) {
	return config.LoadCredentials()
}

// runtimeDeps are the swappable edges of the commands that touch the
// network. Tests replace them with fakes.
type runtimeDeps struct {
	launch      sessionLauncher
	credentials credentialLoader
}

func defaultDeps() runtimeDeps {
	return runtimeDeps{
		launch:      launchRod,
		credentials: loadCredentials,
	}
}

// services holds everything started for one command run.
type services struct {
	fetcher  *instagram.Fetcher
	proxy    *tor.Client
	embedded *tor.EmbeddedTor
	logger   *slog.Logger
}

// Close closes the browser session and stops the Tor daemon.
// It is safe to call more than once.
func (s *services) Close() error {
	var errs []error
	if s.fetcher != nil {
		errs = append(errs, s.fetcher.Close())
	}
	if s.embedded != nil && s.embedded.IsRunning() {
		s.logger.Info("stopping embedded Tor daemon")
		errs = append(errs, s.embedded.Stop())
	}
	return errors.Join(errs...)
}

// startServices launches the browser and, for website runs that ask for
// it, the embedded Tor daemon in parallel, then logs in. On error every
// started component is shut down again.
func startServices(ctx context.Context, cfg *config.Config, creds config.Credentials, deps runtimeDeps, logger *slog.Logger) (*services, error) {
	svc := &services{logger: logger}
	var session browser.Session

	wantsProxy := cfg.Source == model.SourceExternalWebsite
	if !wantsProxy && (cfg.UseTor || cfg.ProxyAddress != "") {
		logger.Warn("proxy settings only apply to external website requests; ignoring them", "source", cfg.Source)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("launching browser", "headless", cfg.Headless)
		s, err := deps.launch(gctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		session = s
		return nil
	})
	if wantsProxy && cfg.UseTor {
		g.Go(func() error {
			logger.Info("starting embedded Tor daemon; bootstrapping can take a few minutes")
			embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
			if err := embedded.Start(gctx); err != nil {
				return err
			}
			svc.embedded = embedded
			logger.Info("embedded Tor daemon started", "socksAddr", embedded.SocksAddr())
			return nil
		})
	}
	err := g.Wait()
	if session != nil {
		svc.fetcher = newProfileFetcher(session, cfg, logger)
	}
	if err != nil {
		_ = svc.Close() //nolint:errcheck // best effort cleanup
		return nil, err
	}

	if wantsProxy {
		if err := svc.connectProxy(ctx, cfg); err != nil {
			_ = svc.Close() //nolint:errcheck // best effort cleanup
			return nil, err
		}
	}

	if err := svc.fetcher.Login(ctx, creds); err != nil {
		_ = svc.Close() //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return svc, nil
}

// connectProxy builds the SOCKS5 client for website requests and checks
// that it can reach the internet.
func (s *services) connectProxy(ctx context.Context, cfg *config.Config) error {
	var (
		client *tor.Client
		err    error
	)
	switch {
	case s.embedded != nil:
		client, err = s.embedded.NewClient()
	case cfg.ProxyAddress != "":
		client, err = tor.NewClient(cfg.ProxyAddress)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create proxy client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		return fmt.Errorf("proxy check failed for %s: %w", client.ProxyAddress(), status.Error())
	}
	s.logger.Info("proxy connection verified", "address", client.ProxyAddress())
	s.proxy = client
	return nil
}

func newProfileFetcher(session browser.Session, cfg *config.Config, logger *slog.Logger) *instagram.Fetcher {
	return instagram.NewFetcher(session,
		instagram.WithLogger(logger),
		instagram.WithBaseURL(cfg.BaseURL),
		instagram.WithSelectors(cfg.Selectors),
		instagram.WithTimeouts(cfg.LoginFormTimeout, cfg.LoginLandingTimeout, cfg.ProfileTimeout),
		instagram.WithDelays(cfg.LoginDelay, cfg.TypingDelay, cfg.NavigationDelay),
	)
}

// loadBaseConfig builds a Config from defaults, the config file and the
// flags shared by every command that opens a browser.
func loadBaseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	if path := config.FindConfigFile(configPath); path != "" {
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.Apply(f)
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if cmd.Flags().Changed("headless") {
		if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
