package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/armoury/internal/api"
	"github.com/erazemk/armoury/internal/auth"
	"github.com/erazemk/armoury/internal/backend"
	"github.com/erazemk/armoury/internal/config"
	"github.com/erazemk/armoury/internal/db"
	"github.com/erazemk/armoury/internal/scan"
	"github.com/erazemk/armoury/internal/store"
	"github.com/erazemk/armoury/internal/telemetry"
	"github.com/erazemk/armoury/internal/web"
	"github.com/erazemk/armoury/internal/workspace"
)

const janitorInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("armoury", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "")
	fs.StringVar(&cfg.DeviceURL, "device", cfg.DeviceURL, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: armoury [flags]

Flags:
  -d, -db <path>          SQLite database path (default: armoury.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -backend <url>          inventory backend base URL
  -device <url>           fingerprint device service base URL
  -h, -help               show this help and exit

Every flag can also be set through its ARMOURY_* environment variable.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("armoury stopped", "error", err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEnabled, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	secret, err := store.GetSigningSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading signing secret: %w", err)
	}

	var opts []backend.Option
	if ts := auth.ServiceTokenSource(cfg.BackendSecret); ts != nil {
		opts = append(opts, backend.WithTokenSource(ts))
	}
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, opts...)
	device := scan.NewHTTPDevice(cfg.DeviceURL)

	sessions := scan.NewRegistry(cfg.ScanIdleTTL)
	workspaces := workspace.NewRegistry(database, workspace.NewCollections(client, cfg.CacheMaxAge), cfg.WorkspaceIdle)
	go sessions.Run(ctx, janitorInterval)
	go workspaces.Run(ctx, janitorInterval)

	apiRouter := api.NewRouter(database, client, device, sessions, workspaces)
	webRouter, err := web.NewRouter(database, client, workspaces)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	handler := api.LoggingMiddleware(workspace.Middleware(secret)(mux))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()

		if err := server.Shutdown(sctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "backend", cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
