package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/paledit/paledit/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ────────────────────────────────────────────────

func printBanner(saveDir string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              paledit  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m         Palworld 存檔角色編輯器           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m存檔:\033[0m %s\n\n", saveDir)
}

// displayWidth counts CJK characters as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	printValue(label, fmt.Sprintf("%d", count))
}

func printValue(label, value string) {
	dotsLen := 42 - displayWidth(label) - displayWidth(value)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

func printUsage() {
	fmt.Println("Usage: paledit <command> [-config path] [-dir save_dir] [-dry-run] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  info       Summarize players, pals and guilds")
	fmt.Println("  pals       List pals per player (-player uid to filter)")
	fmt.Println("  run        Run Lua edit scripts (files, or the scripting dir) and save")
	fmt.Println("  roundtrip  Decode and re-encode Level.sav, report byte identity")
	fmt.Println("  history    Show journaled changes: history <pal|player> <id>")
}

// ── Command dispatch ──────────────────────────────────────────────

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing command")
	}
	cmd := args[0]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return nil
	}

	opts, err := parseArgs(cmd, args[1:])
	if err != nil {
		return err
	}

	// 1. Load .env and config
	if _, err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.saveDir != "" {
		cfg.Save.Dir = opts.saveDir
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner(cfg.Save.Dir)

	switch cmd {
	case "info":
		return cmdInfo(ctx, cfg, log)
	case "pals":
		return cmdPals(ctx, cfg, log, opts.player)
	case "run":
		return cmdRun(ctx, cfg, log, opts.args, opts.dryRun)
	case "roundtrip":
		return cmdRoundTrip(cfg, log)
	case "history":
		return cmdHistory(ctx, cfg, log, opts.args)
	}
	printUsage()
	return fmt.Errorf("unknown command: %s", cmd)
}

type cliOptions struct {
	configPath string
	saveDir    string
	player     string
	dryRun     bool
	args       []string
}

// parseArgs accepts flags before, between and after positional arguments.
// Everything after "--" is positional.
func parseArgs(cmd string, args []string) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", config.Path(), "config file")
	fs.StringVar(&o.saveDir, "dir", "", "world save folder (overrides save.dir)")
	fs.StringVar(&o.player, "player", "", "player uid filter (pals)")
	fs.BoolVar(&o.dryRun, "dry-run", false, "run scripts without writing (run)")

	for {
		if err := fs.Parse(args); err != nil {
			return o, fmt.Errorf("parse %s flags: %w", cmd, err)
		}
		rest := fs.Args()
		if used := len(args) - len(rest); used > 0 && args[used-1] == "--" {
			o.args = append(o.args, rest...)
			return o, nil
		}
		if len(rest) == 0 {
			return o, nil
		}
		o.args = append(o.args, rest[0])
		args = rest[1:]
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
