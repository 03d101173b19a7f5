package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ai-travel-planner/internal/auth"
	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/database"
	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/metrics"
	"ai-travel-planner/internal/note"
	"ai-travel-planner/internal/plan"
	"ai-travel-planner/internal/planner"
	"ai-travel-planner/internal/profile"
	"ai-travel-planner/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "serve":
		if err := serve(ctx, cfg); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	switch cfg.AIProvider {
	case config.ProviderGemini:
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	default:
		textGen = llm.NewClient(cfg)
	}
	log.Printf("Using AI provider: %s", cfg.AIProvider)

	metricsStore := metrics.NewStore(db.SQL)
	noteRepo := note.NewRepository(db.SQL)
	profileRepo := profile.NewRepository(db.SQL)
	planRepo := plan.NewRepository(db.SQL)
	logRepo := plan.NewLogRepository(db.SQL)
	userRepo := auth.NewRepository(db.SQL)
	sessions := auth.NewSessionManager(cfg.SessionSecret)

	generator := planner.NewGenerator(noteRepo, profileRepo, planRepo, logRepo, textGen,
		planner.WithMetrics(metricsStore, cfg.AIProvider))

	srv := server.New(cfg, server.Deps{
		Users:     userRepo,
		Sessions:  sessions,
		Notes:     noteRepo,
		Profiles:  profileRepo,
		Plans:     planRepo,
		Logs:      logRepo,
		Generator: generator,
		Metrics:   metricsStore,
		DataPath:  filepath.Dir(cfg.DatabasePath),
	})
	return srv.Start(ctx)
}

func printUsage() {
	fmt.Println("Usage: ai-travel-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve              Start the HTTP API server (default)")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
