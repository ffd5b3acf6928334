package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"makersite/internal/config"
	appLog "makersite/internal/log"
	"makersite/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	serve      bool
	force      bool
	autoPush   bool
}

func main() {
	appLog.Info("makersite starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevelFromString(conf.LogLevel)

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"staleness_hours", conf.StalenessHours,
		"output_dir", conf.OutputDir,
		"serve", flags.serve,
		"force", flags.force,
		"auto_push", flags.autoPush,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if !flags.serve {
		// One-shot: run the pipeline and exit.
		if _, err := runPipeline(ctx, conf, flags.force, flags.autoPush); err != nil {
			appLog.Error("pipeline failed", err)
			os.Exit(1)
		}
		appLog.Info("makersite exiting")
		return
	}

	// Serve mode: preview server plus cron-driven regeneration.
	server := web.NewServer(conf.OutputDir)

	go func() {
		if err := server.Start(conf.Listen); err != nil {
			appLog.Error("preview server stopped", err)
			cancel()
		}
	}()

	refresh := func() {
		res, err := runPipeline(ctx, conf, false, flags.autoPush)
		if err != nil {
			appLog.Error("scheduled refresh failed", err)
			return
		}
		if res != nil {
			server.SetEvents(res.Events, res.GeneratedAt)
		}
	}

	// Initial generation before the first tick, forced so the preview
	// is never empty on startup.
	if res, err := runPipeline(ctx, conf, true, flags.autoPush); err != nil {
		appLog.Error("initial generation failed", err)
	} else if res != nil {
		server.SetEvents(res.Events, res.GeneratedAt)
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, refresh); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	appLog.Info("refresh schedule active", "refresh", conf.RefreshCron)

	<-ctx.Done()
	c.Stop()
	appLog.Info("makersite exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "makersite.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for serve mode (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the preview server and regenerate on the refresh schedule")
	flag.BoolVar(&cfg.force, "force", false, "Skip change detection and regenerate unconditionally")
	flag.BoolVar(&cfg.autoPush, "auto-push", false, "Commit and push regenerated outputs via git")

	flag.Parse()

	return cfg
}
