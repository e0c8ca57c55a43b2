package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ConciergeChat/internal/backend"
	"ConciergeChat/internal/chatbot"
	"ConciergeChat/internal/config"
	"ConciergeChat/internal/i18n"
	"ConciergeChat/internal/telemetry"
	"ConciergeChat/internal/tui"
)

func main() {
	cfg := config.Load()
	var lang string
	var keepHistory bool

	flag.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Concierge API base URL")
	flag.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Public chat page URL shown as a QR code (defaults to the API URL)")
	flag.StringVar(&lang, "lang", string(cfg.Language), "Display language (en|fr)")
	flag.BoolVar(&keepHistory, "keep-history", !cfg.ClearOnStart, "Keep the previous conversation instead of clearing it on start")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for logs, traces and metrics")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout (0 disables)")
	flag.Usage = usage

	flag.Parse()

	parsed, err := i18n.Parse(lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg.Language = parsed
	cfg.ClearOnStart = !keepHistory

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: concierge [flags] [command]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  (none)                    Open the chat\n")
	fmt.Fprintf(out, "  sessions list             List chat sessions\n")
	fmt.Fprintf(out, "  sessions create [name]    Create a chat session\n")
	fmt.Fprintf(out, "  sessions delete <id>      Delete a chat session\n")
	fmt.Fprintf(out, "  qr [-o file.png]          Print the chat page QR code, or write it as PNG\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	interactive := len(args) == 0

	logger, logCloser, err := telemetry.InitLogger(telemetry.LoggerOptions{
		Dir:     cfg.LogDir,
		File:    "concierge.log",
		Debug:   cfg.Debug,
		Console: !interactive && cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logCloser.Close()

	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx, "concierge", cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer cleanup()

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	client, err := backend.NewClient(cfg.APIURL,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithLogger(logger),
		backend.WithTracer(tracer),
		backend.WithMeter(meter),
	)
	if err != nil {
		return err
	}

	prefs := chatbot.NewPreferences(cfg.Language)

	if !interactive {
		return runCommand(ctx, os.Stdout, client, prefs, cfg, args)
	}

	logger.Info("starting chat", "api_url", client.BaseURL(), "language", string(cfg.Language), "clear_on_start", cfg.ClearOnStart)
	bot := chatbot.NewChatBot(client, prefs, chatbot.Options{
		ClearOnMount: cfg.ClearOnStart,
		Logger:       logger,
		Tracer:       tracer,
		Meter:        meter,
	})
	return tui.Run(ctx, bot, tui.Options{
		QRTarget: cfg.QRTarget(),
		Logger:   logger,
	})
}
