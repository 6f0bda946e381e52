package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftCoach server URL (e.g. https://liftcoach.tail1234.ts.net); empty analyzes locally")
	apiKey := flag.String("api-key", os.Getenv("LIFTCOACH_AUTH_API_KEY"), "server API key (default $LIFTCOACH_AUTH_API_KEY)")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of them")
	targetRPE := flag.Float64("target-rpe", 8, "target RPE for next-session advice")
	force := flag.Bool("force", false, "re-analyze exports unchanged since the last run")
	jsonOut := flag.Bool("json", false, "print full reports as JSON")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftcoach-analyze", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftcoach-analyze -path <export.csv | dir> [-server <URL> -api-key <key>] [-target-rpe N] [-force] [-json]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err := coach.CheckRPE("target-rpe", *targetRPE); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" && *apiKey == "" {
		fmt.Fprintf(os.Stderr, "Error: -api-key is required with -server\n")
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".liftcoach-analyze"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil analyzes locally)
	var client *upload.Client
	if *serverURL != "" {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("LOCAL mode: exports are analyzed on this machine")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(client, state, uuid.Nil, *targetRPE, *force, log)
	results, stats, err := uploader.Run(ctx, *exportPath)
	if err != nil {
		log.Error("analysis failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, r := range results {
			if err := enc.Encode(r.Report); err != nil {
				log.Error("encoding report", "error", err)
				os.Exit(1)
			}
		}
		return
	}

	for _, r := range results {
		printReport(r)
	}
	printStats(stats)
}

func printReport(r upload.Result) {
	rep := r.Report
	fmt.Printf("\n=== %s ===\n", filepath.Base(r.Path))
	fmt.Printf("  Sessions:      %d\n", rep.SessionsParsed)
	fmt.Printf("  Working sets:  %d (%d with RPE)\n", rep.WorkingSets, rep.RatedSets)
	if rep.Message != "" {
		fmt.Printf("  %s\n", rep.Message)
		return
	}

	fmt.Printf("\n  Next session (target RPE %g):\n", rep.TargetRPE)
	for _, a := range rep.Advice {
		line := fmt.Sprintf("    %-32s %6.1f kg x %-2d -> %6.1f kg", a.ExerciseName, a.TopSet.WeightKg, a.TopSet.Reps, a.SuggestedWeight)
		if a.TopRPE != nil {
			line += fmt.Sprintf("  (RPE %g: %s)", *a.TopRPE, a.Feedback)
		}
		fmt.Println(line)
	}
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Analysis Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files analyzed:   %d\n", stats.FilesAnalyzed)
	fmt.Printf("  Files skipped:    %d (unchanged, cached report)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
}
