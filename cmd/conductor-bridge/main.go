package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sjoeboo/conductor-bridge/internal/bridge"
	"github.com/sjoeboo/conductor-bridge/internal/config"
	"github.com/sjoeboo/conductor-bridge/internal/deck"
	"github.com/sjoeboo/conductor-bridge/internal/logging"
	"github.com/sjoeboo/conductor-bridge/internal/telegram"
)

const Version = "0.1.0"

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("Conductor Bridge v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "check":
			handleCheck(args[1:])
			return
		case "run":
			args = args[1:]
		}
	}

	handleRun(args)
}

// handleRun starts the bridge daemon: the Telegram poller and the heartbeat
// cycle, supervised until a shutdown signal arrives.
func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config.toml (default: ~/.agent-deck/config.toml)")

	fs.Usage = func() {
		fmt.Println("Usage: conductor-bridge [run] [options]")
		fmt.Println()
		fmt.Println("Bridge Telegram to agent-deck conductor sessions.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfigOrExit(*configPath)

	logDir, err := config.ConductorDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving log directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log directory: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		LogDir:   logDir,
		Level:    cfg.LogLevel,
		Compress: true,
	})
	defer logging.Shutdown()

	log := logging.ForComponent(logging.CompBridge)
	log.Info("bridge_starting",
		slog.String("version", Version),
		slog.Int("heartbeat_minutes", cfg.HeartbeatInterval),
		slog.String("profiles", strings.Join(cfg.Profiles, ",")))

	respTimeout := time.Duration(cfg.ResponseTimeout) * time.Second

	client := deck.NewClient(deck.NewRunner(cfg.DeckBin))
	registry := bridge.NewRegistry(cfg.Profiles)
	lifecycle := bridge.NewLifecycle(client, config.ConductorProfileDir)
	tg := telegram.NewClient(cfg.Telegram.Token, "")

	br := bridge.New(client, lifecycle, registry, tg, cfg.AllowedIDs(), respTimeout)
	hb := bridge.NewHeartbeat(client, lifecycle, registry, tg, cfg.AlertID(), cfg.HeartbeatInterval, respTimeout)

	poller := telegram.NewPoller(tg, func(ctx context.Context, msg telegram.Message) {
		inbound := bridge.InboundMessage{
			ChatID: msg.Chat.ID,
			Text:   msg.Text,
		}
		if msg.From != nil {
			inbound.SenderID = msg.From.ID
		}
		br.HandleMessage(ctx, inbound)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(ctx) })
	g.Go(func() error { return hb.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bridge_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("bridge_stopped")
}

// handleCheck validates the configuration and prints what the bridge would
// run with, without starting anything.
func handleCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config.toml (default: ~/.agent-deck/config.toml)")

	fs.Usage = func() {
		fmt.Println("Usage: conductor-bridge check [options]")
		fmt.Println()
		fmt.Println("Validate the bridge configuration without starting the daemon.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfigOrExit(*configPath)

	heartbeat := fmt.Sprintf("every %d minutes", cfg.HeartbeatInterval)
	if cfg.HeartbeatInterval <= 0 {
		heartbeat = "disabled"
	}

	fmt.Println("Config OK")
	fmt.Printf("  Profiles:   %s (default: %s)\n", strings.Join(cfg.Profiles, ", "), cfg.Profiles[0])
	fmt.Printf("  Heartbeat:  %s\n", heartbeat)
	fmt.Printf("  Binary:     %s\n", cfg.DeckBin)
	fmt.Printf("  Authorized: %d identity(ies)\n", len(cfg.AllowedIDs()))
}

func loadConfigOrExit(path string) *config.Config {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func printHelp() {
	fmt.Println("Usage: conductor-bridge <command> [options]")
	fmt.Println()
	fmt.Println("Bridge a Telegram bot to agent-deck conductor sessions, one per profile.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run       Start the bridge daemon (default)")
	fmt.Println("  check     Validate configuration and exit")
	fmt.Println("  version   Print version")
	fmt.Println("  help      Show this help")
	fmt.Println()
	fmt.Println("Configuration lives in the [conductor] section of ~/.agent-deck/config.toml:")
	fmt.Println()
	fmt.Println("  [conductor]")
	fmt.Println("  enabled = true")
	fmt.Println("  heartbeat_interval = 15   # minutes, <= 0 disables")
	fmt.Println("  profiles = [\"default\", \"work\"]")
	fmt.Println()
	fmt.Println("  [conductor.telegram]")
	fmt.Println("  token = \"<bot token from @BotFather>\"")
	fmt.Println("  user_id = 123456789       # from @userinfobot")
}
