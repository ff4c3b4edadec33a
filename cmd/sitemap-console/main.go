package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sitemap-console/pkg/api"
	"sitemap-console/pkg/config"
	"sitemap-console/pkg/console"
	"sitemap-console/pkg/document"
	"sitemap-console/pkg/logging"
	"sitemap-console/pkg/ratelimit"
	"sitemap-console/pkg/storage"
	"sitemap-console/pkg/telemetry"
	"sitemap-console/pkg/xmltree"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-password":
			os.Exit(runHashPassword(os.Args[2:]))
		case "import":
			os.Exit(runImport(os.Args[2:]))
		}
	}

	configPath := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logging.SetGlobal(logger)

	logger.Info("Sitemap console starting",
		"version", version,
		"build_time", buildTime,
		"generation", cfg.Console.Generation,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("Sitemap console failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Sitemap console stopped")
}

// loadConfig reads path, falling back to defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Config %s not found, using defaults\n", path)
		return config.LoadWithDefaults(), nil
	}
	return cfg, err
}

func storageConfig(cfg config.StorageConfig) *storage.Config {
	return &storage.Config{
		Enabled: cfg.Enabled,
		Backend: storage.BackendSQLite,
		SQLite: storage.SQLiteConfig{
			Path:        cfg.DatabasePath,
			BusyTimeout: int(cfg.BusyTimeout / time.Millisecond),
			WALMode:     true,
		},
		Retention: cfg.Retention,
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telem, err := telemetry.New(ctx, &cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	metrics, err := telem.InitMetrics()
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	store, err := storage.New(storageConfig(cfg.Storage), metrics)
	if err != nil {
		return fmt.Errorf("open revision storage: %w", err)
	}
	defer store.Close()

	gen, err := console.ParseGeneration(cfg.Console.Generation)
	if err != nil {
		return err
	}
	c, err := console.New(console.Options{
		Generation:      gen,
		Logger:          logger.WithComponent("console").Logger,
		Metrics:         metrics,
		SecureTransport: func() bool { return cfg.Server.TLS.Enabled },
	})
	if err != nil {
		return err
	}

	source := document.NewFileSource(cfg.Document.Path)
	if err := loadDocument(ctx, source, c); err != nil {
		// The console still serves health and reload; a missing document
		// can be fixed without a restart.
		logger.Warn("Settings document not loaded", "path", source.Path, "error", err)
	}

	if limits, err := console.ReadHostLimits(ctx, filepath.Dir(source.Path)); err != nil {
		logger.Warn("Host limits unavailable", "error", err)
	} else {
		c.SetHostLimits(limits)
	}

	session := console.NewSession(c)
	go session.Run(ctx)

	if cfg.Document.Watch {
		watcher, err := document.NewWatcher(source, logger.WithComponent("watcher").Logger)
		if err != nil {
			return fmt.Errorf("watch settings document: %w", err)
		}
		watcher.OnChange(func(data []byte) {
			applyExternalChange(ctx, session, store, metrics, logger, data)
		})
		go func() {
			if err := watcher.Start(ctx); err != nil {
				logger.Error("Document watcher stopped", "error", err)
			}
		}()
	}

	limiter := ratelimit.NewManager(&cfg.RateLimit, logger)
	if limiter != nil {
		defer limiter.Stop()
	}

	server, err := api.New(&api.Config{
		Server:      cfg.Server,
		Auth:        cfg.Auth,
		Session:     session,
		Source:      source,
		Storage:     store,
		Metrics:     metrics,
		Tracer:      telem.TracerProvider().Tracer("sitemap-console/api"),
		RateLimiter: limiter,
		Logger:      logger.WithComponent("api").Logger,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(serverCtx); err != nil {
			errChan <- err
		}
	}()

	logger.Info("Sitemap console is running",
		"address", cfg.Server.ListenAddress,
		"document", source.Path,
		"tls", cfg.Server.TLS.Enabled,
	)

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		serverCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		session.Close()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during telemetry shutdown", "error", err)
		}
		return nil

	case err := <-errChan:
		return fmt.Errorf("api server: %w", err)
	}
}

func loadDocument(ctx context.Context, source *document.FileSource, c *console.SiteSettings) error {
	data, err := source.Load(ctx)
	if err != nil {
		return err
	}
	doc, err := xmltree.Parse(data)
	if err != nil {
		return err
	}
	return c.SetData(doc)
}

// applyExternalChange loads a document changed outside the console. The
// file is authoritative, so the page on screen is refreshed without asking.
func applyExternalChange(ctx context.Context, session *console.Session, store storage.Storage,
	metrics *telemetry.Metrics, logger *logging.Logger, data []byte) {
	doc, err := xmltree.Parse(data)
	if err != nil {
		logger.Error("Changed settings document is not valid XML, keeping current", "error", err)
		return
	}

	var site string
	err = session.Do(ctx, nil, func(c *console.SiteSettings) error {
		if err := c.SetData(doc); err != nil {
			return err
		}
		site = c.CurrentSite().String()
		return nil
	})
	if err != nil {
		logger.Error("Failed to apply changed settings document", "error", err)
		return
	}
	metrics.DocumentReloaded()

	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := store.SaveRevision(saveCtx, &storage.Revision{Site: site, Page: "external", Document: data}); err != nil {
		logger.Warn("Failed to record external revision", "error", err)
	}
}
