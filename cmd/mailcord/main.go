package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tracyhatemice/mailcord/internal/config"
	"github.com/tracyhatemice/mailcord/internal/dedup"
	"github.com/tracyhatemice/mailcord/internal/discord"
	"github.com/tracyhatemice/mailcord/internal/forwarder"
	"github.com/tracyhatemice/mailcord/internal/receiver"
	"github.com/tracyhatemice/mailcord/internal/render"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	dataDir := flag.String("data-dir", "data", "directory for persistent data (pop3 seen state)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("mailcord starting",
		"protocol", cfg.Mailbox.Protocol,
		"channel", cfg.Discord.ChannelID,
		"render_pdf", cfg.Forward.RenderPDF,
	)

	recv, err := newReceiver(cfg, *dataDir, logger)
	if err != nil {
		logger.Error("failed to create receiver", "error", err)
		os.Exit(1)
	}

	sender, err := discord.New(cfg.Discord.Token, cfg.Discord.ChannelID, logger)
	if err != nil {
		logger.Error("failed to create discord client", "error", err)
		os.Exit(1)
	}

	renderer := &render.Chromium{Logger: logger}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fwd := forwarder.New(cfg, recv, sender, renderer, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fwd.Run(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down, waiting for forwarder to finish...")

	// Force exit on second signal.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Warn("forced shutdown")
		os.Exit(1)
	}()

	<-done
	logger.Info("mailcord stopped")
}

func newReceiver(cfg *config.Config, dataDir string, logger *slog.Logger) (receiver.Receiver, error) {
	m := cfg.Mailbox
	switch m.Protocol {
	case "pop3":
		seenFile := filepath.Join(dataDir, sanitize(m.Username)+".seen")
		tracker, err := dedup.NewTracker(seenFile)
		if err != nil {
			return nil, fmt.Errorf("create dedup tracker: %w", err)
		}
		logger.Info("loaded seen state", "seen_count", tracker.Count())
		return receiver.NewPOP3(
			m.Host, m.Port,
			m.Username, m.Password,
			m.UseTLS, tracker, logger,
		), nil
	case "imap":
		return receiver.NewIMAP(
			m.Host, m.Port,
			m.Username, m.Password,
			m.UseTLS, m.GetIMAPFolder(), logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", m.Protocol)
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func sanitize(name string) string {
	if name == "" {
		return "default"
	}
	out := make([]byte, 0, len(name))
	for _, b := range []byte(name) {
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '-' || b == '_' {
			out = append(out, b)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}
