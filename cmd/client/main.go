package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Studio24-sys/classifieds-api/internal/client/api"
	"github.com/Studio24-sys/classifieds-api/internal/client/auth"
	"github.com/Studio24-sys/classifieds-api/internal/client/cli"
	"github.com/Studio24-sys/classifieds-api/internal/client/iocli"
	"github.com/Studio24-sys/classifieds-api/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("CLASSIFIEDS_SERVER", "http://localhost:8080"), "Server URL")
	dbPath := flag.String("db", envOr("CLASSIFIEDS_DB", "classifieds-client.db"), "Path to local session database")
	flag.Usage = func() { cli.PrintUsage(os.Stderr) }

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	os.Exit(run(args[0], args[1:], *serverURL, *dbPath))
}

func run(command string, args []string, serverURL, dbPath string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	boltStorage, err := boltdb.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(serverURL)
	authService := auth.NewService(apiClient, boltStorage)

	c := cli.New(iocli.NewStdio(), apiClient, authService)

	if err := c.Run(ctx, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var unknown cli.ErrUnknownCommand
		if errors.As(err, &unknown) {
			cli.PrintUsage(os.Stderr)
		}
		return 1
	}

	return 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printVersion() {
	fmt.Printf("Classifieds Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
