package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
	"github.com/Vinuthna-Athimamula/QuMail/internal/entropy"
	"github.com/Vinuthna-Athimamula/QuMail/internal/infra/buildinfo"
	"github.com/Vinuthna-Athimamula/QuMail/internal/infra/confloader"
	"github.com/Vinuthna-Athimamula/QuMail/internal/infra/shutdown"
	"github.com/Vinuthna-Athimamula/QuMail/internal/localpool"
	"github.com/Vinuthna-Athimamula/QuMail/internal/server/config"
	"github.com/Vinuthna-Athimamula/QuMail/internal/server/httpserver"
	"github.com/Vinuthna-Athimamula/QuMail/internal/storage/memory"
	"github.com/Vinuthna-Athimamula/QuMail/internal/telemetry/logger"
	"github.com/Vinuthna-Athimamula/QuMail/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("qumail-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting qumail-server",
		"version", info.Version,
		"commit", info.Commit,
		"addr", cfg.Server.Addr,
	)

	metrics := metric.NewRegistry()

	// Entropy chain: quantum source when configured, system CSPRNG as
	// the whole-request fallback.
	var primary entropy.Source
	if cfg.Entropy.URL != "" {
		primary = entropy.NewQuantum(
			entropy.WithBaseURL(cfg.Entropy.URL),
			entropy.WithMaxRequestBytes(cfg.Entropy.MaxRequestBytes),
			entropy.WithTimeout(cfg.Entropy.Timeout),
		)
		log.Info("quantum entropy source enabled", "url", config.Sanitize(cfg).Entropy.URL)
	} else {
		primary = entropy.NewSystem()
		log.Info("quantum entropy source disabled, using system CSPRNG")
	}
	adapter := entropy.NewAdapter(primary, entropy.NewSystem(), entropy.WithObserver(metrics))

	presenceStore := memory.NewPresenceStore(cfg.QKD.PresenceTTL)
	sessionStore := memory.NewSessionStore()

	presenceSvc := service.NewPresenceService(presenceStore)
	sessionSvc := service.NewSessionService(sessionStore, presenceSvc, adapter, service.SessionConfig{
		SessionTTL:         cfg.QKD.SessionTTL,
		MaxBufferBytes:     cfg.QKD.MaxBufferBytes,
		DefaultTargetBytes: cfg.QKD.TargetBufferBytes,
	}, metrics)

	pool := localpool.New(adapter, localpool.Config{
		BatchSize: cfg.Pool.BatchSize,
		KeyBytes:  cfg.Pool.KeyBytes,
		MaxKeys:   cfg.Pool.MaxKeys,
	})

	ctx := context.Background()
	metrics.RegisterSessionGauge(func() float64 {
		return float64(sessionSvc.Count(ctx))
	})

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Presence:       presenceSvc,
		Sessions:       sessionSvc,
		Pool:           pool,
		Logger:         log,
		MetricsHandler: metrics.Handler(),
		Observer:       metrics,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	server := httpserver.New(cfg.Server.Addr, router, httpserver.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
	})

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)

	// Periodic expiry sweep for sessions and stale presence records.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.QKD.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				expired := sessionSvc.GC(ctx)
				stale := presenceSvc.Sweep(ctx, 10*cfg.QKD.PresenceTTL)
				if expired > 0 || stale > 0 {
					log.Debug("sweep completed",
						"expired_sessions", expired,
						"stale_presence", stale,
					)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	// Live log level adjustment on config file changes.
	if *configFile != "" {
		watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
		if err != nil {
			return fmt.Errorf("init config watcher: %w", err)
		}
		if err := watcher.Watch(*configFile); err != nil {
			return fmt.Errorf("watch config file: %w", err)
		}
		watcher.OnChange(func(path string) {
			reloaded, err := loadConfig(path)
			if err != nil {
				log.Warn("config reload failed", "error", err)
				return
			}
			logger.SetLevel(reloaded.Log.Level)
			log.Info("log level applied from config", "level", reloaded.Log.Level)
		})
		watcher.StartAsync()

		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	shutdownHandler.OnShutdown(func(context.Context) error {
		close(sweepDone)
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
