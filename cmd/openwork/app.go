package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"openwork/internal/api"
	"openwork/internal/config"
	"openwork/internal/engine"
	"openwork/internal/i18n"
	"openwork/internal/model"
	"openwork/internal/settings"
	"openwork/internal/state"
	"openwork/internal/syncer"
	"openwork/internal/tui"
)

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if flagServer != "" {
		cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(flagServer), "/")
	}
	if flagPlain {
		cfg.UI.Plain = true
	}
	return cfg, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	i18n.Init(cfg.UI.Locale)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefs, err := settings.Open(cfg.SettingsPath())
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer prefs.Close()

	baseURL := cfg.Server.BaseURL
	var manager *engine.Manager

	// A live server at the configured URL wins; otherwise an auto-started
	// engine supplies its own address.
	if !serverReachable(ctx, baseURL, cfg.Server.TimeoutMS) && cfg.Engine.AutoStart && flagServer == "" {
		manager = engine.NewManager(cfg.Engine.Command, cfg.Engine.CORSOrigins)
		projectDir := resolveProjectDir(prefs)
		fmt.Fprintln(os.Stderr, i18n.T("engine.starting", projectDir))
		info, err := manager.Start(projectDir)
		if err != nil {
			return fmt.Errorf("start engine: %w", err)
		}
		defer manager.Stop()
		baseURL = info.BaseURL
		fmt.Fprintln(os.Stderr, i18n.T("engine.started", baseURL, info.PID))
		_ = prefs.SetLastProjectDir(projectDir)
	}

	client := api.NewClient(baseURL, api.Options{TimeoutMS: cfg.Server.TimeoutMS})

	fmt.Fprintln(os.Stderr, i18n.T("server.waiting", baseURL))
	health, err := api.WaitHealthy(ctx, client, api.ProbeOptions{
		Timeout: time.Duration(cfg.Server.ProbeTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("server not ready: %w", err)
	}
	fmt.Fprintln(os.Stderr, i18n.T("server.ready", health.Version))
	_ = prefs.SetLastBaseURL(baseURL)

	store := state.NewStore()
	models := model.NewResolver(prefs)
	rec := syncer.New(client, store, models, func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := rec.RefreshSessions(ctx); err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()
	go func() {
		// The reconciler never reconnects on its own; when the stream
		// drops, probe until the server answers again and subscribe fresh.
		for {
			_ = rec.Run(streamCtx)
			if streamCtx.Err() != nil {
				return
			}
			fmt.Fprintln(os.Stderr, i18n.T("server.lost"))
			if _, err := api.WaitHealthy(streamCtx, client, api.ProbeOptions{
				Timeout: time.Duration(cfg.Server.ProbeTimeoutMS) * time.Millisecond,
			}); err != nil {
				if streamCtx.Err() != nil {
					return
				}
				continue
			}
			_ = rec.RefreshSessions(streamCtx)
		}
	}()

	saveDefault := func(ref state.ModelRef) error {
		return prefs.SetDefaultModel(ref)
	}

	if cfg.UI.Plain {
		return runPlain(ctx, cfg, client, store, models, rec, prefs)
	}
	return tui.Run(ctx, store, rec, models, saveDefault, cfg.UI.Markdown)
}

// serverReachable is a single cheap health check, used only to decide
// whether an engine needs starting.
func serverReachable(ctx context.Context, baseURL string, timeoutMS int) bool {
	if baseURL == "" {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	health, err := api.NewClient(baseURL, api.Options{TimeoutMS: timeoutMS}).Health(probeCtx)
	return err == nil && health.Healthy
}

func resolveProjectDir(prefs *settings.Store) string {
	if flagProject != "" {
		return flagProject
	}
	if dir, err := prefs.LastProjectDir(); err == nil && dir != "" {
		if _, statErr := os.Stat(dir); statErr == nil {
			return dir
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
