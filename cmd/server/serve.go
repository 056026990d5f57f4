package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	server "github.com/Ajayos/Server"
	"github.com/Ajayos/Server/internal/config"
	"github.com/Ajayos/Server/internal/job"
	"github.com/Ajayos/Server/internal/support/logging"
	"github.com/Ajayos/Server/internal/sysinfo"
	"github.com/Ajayos/Server/middleware"
)

var (
	servePort        int
	serveStaticDir   string
	serveVitalsEvery string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static", "", "Serve files from this directory at /")
	serveCmd.Flags().StringVar(&serveVitalsEvery, "vitals-every", "", "Cron spec for periodic vitals log lines (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.HTTP.Port = servePort
	}
	if serveVitalsEvery != "" {
		cfg.Jobs.VitalsEvery = serveVitalsEvery
	}

	logger := logging.New(logging.Options{
		Level:     logging.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		NoColor:   cfg.Log.NoColor,
	})
	if cfg.Source != "" {
		logger.Info("config loaded", "source", cfg.Source)
	}

	srvCfg, err := buildServerConfig(cfg, logger)
	if err != nil {
		return err
	}
	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}

	for _, mount := range cfg.Static {
		if err := mountStatic(srv, mount.Prefix, mount.Dir); err != nil {
			return err
		}
	}
	if serveStaticDir != "" {
		if err := srv.Static(serveStaticDir); err != nil {
			return err
		}
	}

	var scheduler *job.Scheduler
	if cfg.Jobs.VitalsEvery != "" {
		scheduler = job.NewScheduler(job.Options{Logger: logger, Timeout: cfg.Jobs.Timeout})
		vitalsJob := job.NewVitalsJob(sysinfo.New(), logger)
		if _, err := scheduler.Register(cfg.Jobs.VitalsEvery, vitalsJob); err != nil {
			return err
		}
		scheduler.Start()
	}

	if err := srv.Start(); err != nil {
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		return err
	}

	done := make(chan error, 1)
	go func() { done <- srv.Wait() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-done:
		// The listener died on its own; nothing is left to drain.
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		return err
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful drain failed, connections were cut", "error", err)
	}
	if err := <-done; err != nil {
		return err
	}
	logger.Info("server exited cleanly")
	return nil
}

// buildServerConfig maps the file and environment configuration onto the
// facade's construction struct. Sections left disabled in the file stay
// nil so the facade skips them entirely.
func buildServerConfig(cfg *config.Config, logger *slog.Logger) (server.Config, error) {
	out := server.Config{
		Port:            cfg.HTTP.Port,
		Host:            cfg.HTTP.Host,
		Env:             cfg.Env,
		CORS:            cfg.Middleware.CORS,
		Helmet:          cfg.Middleware.Helmet,
		BodyParser:      cfg.Middleware.BodyParser,
		CookieParser:    cfg.Middleware.CookieParser,
		CookieSecret:    cfg.Middleware.CookieSecret,
		Logger:          logger,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}

	if cfg.TLS.Present() {
		out.TLS = &server.TLSConfig{CertFile: cfg.TLS.CertFile, KeyFile: cfg.TLS.KeyFile}
	}

	if cfg.Log.Requests {
		requestLog := middleware.DefaultRequestLogConfig()
		requestLog.Logger = logger
		out.RequestLog = &requestLog
	}

	if cfg.Metrics.Enabled {
		metrics := middleware.DefaultMetricsConfig()
		if cfg.Metrics.Namespace != "" {
			metrics.Namespace = cfg.Metrics.Namespace
		}
		if cfg.Metrics.Subsystem != "" {
			metrics.Subsystem = cfg.Metrics.Subsystem
		}
		if len(cfg.Metrics.Buckets) > 0 {
			metrics.Buckets = cfg.Metrics.Buckets
		}
		metrics.Token = cfg.Metrics.Token
		out.Metrics = &metrics
	}

	if cfg.Vitals.Enabled {
		vitals := &server.VitalsConfig{Path: cfg.Vitals.Path, Scope: cfg.Vitals.Scope}
		if cfg.Vitals.Guarded {
			if cfg.Auth.SigningKey == "" {
				return out, fmt.Errorf("vitals.guarded requires auth.signing_key")
			}
			vitals.SigningKey = []byte(cfg.Auth.SigningKey)
			vitals.Issuer = cfg.Auth.Issuer
		}
		out.Vitals = vitals
	}

	if cfg.RateLimit.Enabled {
		rateLimit := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.Limit > 0 {
			rateLimit.Limit = cfg.RateLimit.Limit
		}
		if cfg.RateLimit.Window > 0 {
			rateLimit.Window = cfg.RateLimit.Window
		}
		out.RateLimit = &rateLimit
	}

	return out, nil
}

func mountStatic(srv *server.Server, prefix, dir string) error {
	if prefix == "" || prefix == "/" {
		return srv.Static(dir)
	}
	return srv.StaticAt(prefix, dir)
}
