package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftcoach/internal/config"
	"github.com/claude/liftcoach/internal/mcp"
	"github.com/claude/liftcoach/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("url", "", "LiftCoach server URL (e.g. https://liftcoach.tail1234.ts.net)")
	configPath := flag.String("config", "", "read the training log directly using this config file instead of -url")
	targetRPE := flag.Float64("target-rpe", 8, "default target RPE in -url mode")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftcoach-mcp", Version)
		return
	}

	// stdout carries the protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*serverURL == "") == (*configPath == "") {
		fmt.Fprintf(os.Stderr, "Usage: liftcoach-mcp -url <server URL> | -config <config.yaml>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var (
		ds     mcp.DataSource
		userID = uuid.Nil
		target = *targetRPE
	)

	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "url", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		local, closeStore, err := openLocal(context.Background(), cfg.Database)
		if err != nil {
			log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
			os.Exit(1)
		}
		defer closeStore()

		ds = local
		userID = cfg.Auth.DevUser()
		target = cfg.Coach.DefaultTargetRPE
		log.Info("local mode", "driver", cfg.Database.Driver, "user", userID)
	}

	s := mcp.New(ds, target, Version, log)
	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, userID)
	}))
	if err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func openLocal(ctx context.Context, db config.DatabaseConfig) (mcp.DataSource, func(), error) {
	if db.Driver == config.DriverSQLite {
		snap, err := storage.OpenSnapshot(ctx, db.Path)
		if err != nil {
			return nil, nil, err
		}
		return snap, func() { _ = snap.Close() }, nil
	}
	pg, err := storage.New(ctx, db.DSN())
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}
