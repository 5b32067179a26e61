package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/internal/config"
	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/internal/engine"
	"github.com/me/godp/internal/logging"
	"github.com/me/godp/internal/plugin"
	"github.com/me/godp/internal/server"
	"github.com/me/godp/internal/store"
)

func main() {
	cfg := config.DefaultServerConfig()

	configFile := flag.String("config", "", "Path to YAML server config file")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Task-history database path (default ~/.godp/godp.db)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Worker pool size")
	flag.StringVar(&cfg.PluginDir, "plugin-dir", cfg.PluginDir, "Directory scanned for plugin scripts at startup")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".godp")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "godp.db")
	}

	// Open the task archive and run migrations.
	archive, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	if err := archive.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	// Built-in dataset and algorithm types plus script plugins.
	datasets := dataset.NewDefaultRegistry()
	algorithms := algorithm.NewDefaultRegistry()
	plugins := plugin.NewManager(algorithms, logger)
	if cfg.PluginDir != "" {
		n := plugins.LoadDir(cfg.PluginDir)
		logger.Info("plugins loaded", "dir", cfg.PluginDir, "count", n)
	}

	// Start the task engine.
	eng := engine.New(engine.Options{
		Workers:  cfg.Workers,
		Logger:   logger,
		Archiver: archive,
	})

	srv := server.New(cfg, eng, datasets, algorithms, logger,
		server.WithArchive(archive),
		server.WithPluginManager(plugins),
	)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "workers", cfg.Workers)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}

	// Drain the queue before exiting so accepted tasks finish and archive.
	eng.Shutdown()
	logger.Info("server stopped")
}
