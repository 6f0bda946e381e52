package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/claude/liftcoach/internal/config"
	"github.com/claude/liftcoach/internal/mcp"
	"github.com/claude/liftcoach/internal/server"
	"github.com/claude/liftcoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftCoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect training log
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	log.Info("database connected", "driver", cfg.Database.Driver)

	// Create server
	srv := server.New(store, server.Options{
		APIKey:           cfg.Auth.APIKey,
		DevUserID:        cfg.Auth.DevUser(),
		DefaultTargetRPE: cfg.Coach.DefaultTargetRPE,
	}, log)

	mcpServer := mcp.New(store, cfg.Coach.DefaultTargetRPE, Version, log)
	srv.SetMCP(mcp.NewHTTPHandler(mcpServer, server.UserID))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)", "dev_user", cfg.Auth.DevUser())
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// storeBackend is what both the HTTP API and the MCP tools read from.
type storeBackend interface {
	server.Store
	mcp.DataSource
}

// openStore connects the configured backend: the Postgres training log or
// a SQLite snapshot of it.
func openStore(ctx context.Context, db config.DatabaseConfig) (storeBackend, func(), error) {
	switch db.Driver {
	case config.DriverSQLite:
		snap, err := storage.OpenSnapshot(ctx, db.Path)
		if err != nil {
			return nil, nil, err
		}
		return snap, func() { _ = snap.Close() }, nil
	default:
		pg, err := storage.New(ctx, db.DSN())
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
}
