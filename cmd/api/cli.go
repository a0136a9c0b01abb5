package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/logger"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/version"
)

const (
	exitOK     = 0
	exitUsage  = 2
	exitConfig = 3
	exitWarm   = 4
)

const warmTimeout = 10 * time.Minute

var (
	warmRunner = realWarmRunner
	osExit     = os.Exit
)

func handleCLICommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "warm":
		osExit(runWarm(args[1:]))
		return true
	case "version", "--version":
		fmt.Println(version.String())
		osExit(exitOK)
		return true
	case "help", "-h", "--help":
		printHelp()
		osExit(exitOK)
		return true
	default:
		return false
	}
}

// runWarm loads the full customer history once, which checks the Shopify
// credentials and reports how many customers the server would serve.
func runWarm(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "warm takes no arguments, got %q\n", args)
		return exitUsage
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitConfig
	}
	if !cfg.ShopifyConfigured() {
		fmt.Fprintln(os.Stderr, "config error: SHOPIFY_STORE_URL and SHOPIFY_ACCESS_TOKEN are required")
		return exitConfig
	}

	if warmRunner == nil {
		warmRunner = realWarmRunner
	}

	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()
	n, err := warmRunner(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warm failed: %v\n", err)
		return exitWarm
	}
	fmt.Printf("loaded %d customers from %s\n", n, cfg.ShopifyStoreURL)
	return exitOK
}

func realWarmRunner(ctx context.Context, cfg config.Config) (int, error) {
	log := logger.New(cfg.AppEnv)
	return customers.New(cfg, log, nil).Warm(ctx)
}

func printHelp() {
	fmt.Println("CEO Outreach API")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  outreach-api            Start API server")
	fmt.Println("  outreach-api warm       Fetch all customers and orders once and exit")
	fmt.Println("  outreach-api version    Print the build version")
}
