package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/artifacts"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/config"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/observability"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/server"
	"github.com/BlinkZer0/Phys-MCP-sub002/internal/worker"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v before flag parsing so they work without a
	// valid config.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("phys-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "Path to TOML config file (or PHYS_MCP_CONFIG)")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("PHYS_MCP_CONFIG")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phys-mcp: %v\n", err)
		os.Exit(1)
	}

	log := observability.InitLogger("phys-mcp", cfg.Logging.Level)
	log.Info().
		Str("version", Version).
		Str("worker", cfg.Worker.Command).
		Msg("starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client := worker.NewClient(worker.Config{
		Launcher: worker.Command{
			Path: cfg.Worker.Command,
			Args: cfg.Worker.Args,
		},
		CallTimeout: time.Duration(cfg.Worker.CallTimeoutMS) * time.Millisecond,
		Log:         log,
	})
	defer client.Close()

	store, err := artifacts.NewStore(cfg.Artifacts.Dir, cfg.Artifacts.ThumbnailWidth, log)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Worker: client,
		Store:  store,
		Log:    log,
	})

	// stdin/stdout carry the protocol; all logging goes to stderr. The
	// run loop blocks on stdin reads, so a signal is handled here rather
	// than waiting for the next inbound line.
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func printHelp() {
	fmt.Println("phys-mcp - MCP server bridging physics computation to a Python worker")
	fmt.Println()
	fmt.Println("Usage: phys-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config PATH    Path to TOML config file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PHYS_MCP_CONFIG  Config file path when --config is not given")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
