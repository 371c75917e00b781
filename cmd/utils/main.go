package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/joho/godotenv"

	"github.com/appetiteclub/miniapp/cmd/utils/internal/commands"
)

const (
	appName    = "miniapp-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	command := os.Args[1]
	args, flags := splitArgs(os.Args[2:])

	config, err := apt.LoadConfig("MINIAPP", flags)
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "validate-menu":
		if err := commands.ValidateMenu(ctx, config, logger, os.Stdout); err != nil {
			log.Fatalf("❌ Menu validation failed: %v", err)
		}
		logger.Info("✅ Menu is valid")

	case "clear-cart":
		if len(args) != 1 {
			log.Fatalf("clear-cart needs exactly one user id")
		}
		if err := commands.ClearCart(ctx, config, logger, args[0]); err != nil {
			log.Fatalf("❌ Clear cart failed: %v", err)
		}
		logger.Info("✅ Cart cleared", "user_id", args[0])

	case "reset-db":
		if err := commands.ResetDB(ctx, config, logger); err != nil {
			log.Fatalf("❌ Storage reset failed: %v", err)
		}
		logger.Info("✅ Storage reset completed successfully")

	case "tail-orders":
		if err := commands.TailOrders(ctx, config, logger, os.Stdout); err != nil {
			log.Fatalf("❌ Tail orders failed: %v", err)
		}

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// splitArgs separates positional arguments from --flags meant for the config loader.
func splitArgs(in []string) (args, flags []string) {
	for _, a := range in {
		if len(a) > 1 && a[0] == '-' {
			flags = append(flags, a)
			continue
		}
		args = append(args, a)
	}
	return args, flags
}

func printUsage() {
	fmt.Printf(`%s - coffee shop mini app utility commands

Usage:
  %s <command> [args] [options]

Commands:
  validate-menu        Load the configured menu and report problems
  clear-cart <user>    Remove the stored cart of one user
  reset-db             Delete every stored cart and preference (USE WITH CAUTION)
  tail-orders          Print orders handed to the chat host until interrupted
  version              Print version information
  help                 Show this help message

Environment Variables:
  MINIAPP_STORAGE_DRIVER   memory, mongo or postgres (default: memory)
  MINIAPP_DB_MONGO_URL     MongoDB connection URL
  MINIAPP_DB_POSTGRES_DSN  PostgreSQL connection string
  MINIAPP_MENU_SOURCE      Menu file path or URL (default: menu.json)
  MINIAPP_NATS_URL         NATS server URL (default: nats://localhost:4222)
  MINIAPP_LOG_LEVEL        Log level: debug, info, warn, error (default: info)

Examples:
  %s validate-menu
  %s clear-cart 123456789
  MINIAPP_STORAGE_DRIVER=mongo %s reset-db

`, appName, appName, appName, appName, appName)
}
