package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/companion/internal/cli"
	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "instagram-import":
		cmd := cli.NewInstagramImportCommand()
		if err := cmd.ParseFlags(args); err != nil {
			exitWithError(err)
		}
		if err := cmd.Run(ctx); err != nil {
			exitWithError(err)
		}

	case "profiles":
		cmd := cli.NewProfilesCommand()
		if err := cmd.ParseFlags(args); err != nil {
			exitWithError(err)
		}
		if err := cmd.Run(); err != nil {
			exitWithError(err)
		}

	case "watch":
		cmd := cli.NewWatchCommand()
		if err := cmd.ParseFlags(args); err != nil {
			exitWithError(err)
		}
		if err := cmd.Run(ctx); err != nil {
			exitWithError(err)
		}

	case "version":
		fmt.Printf("companion %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve             Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  instagram-import  Import an Instagram data export archive\n")
	fmt.Fprintf(os.Stderr, "  profiles          List or delete imported profiles\n")
	fmt.Fprintf(os.Stderr, "  watch             Import archives dropped into an inbox directory\n")
	fmt.Fprintf(os.Stderr, "  version           Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
