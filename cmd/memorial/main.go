// Command memorial holds an audience with the Grand Councilor: a terminal
// chat client whose replies come back as memorials to the throne.
//
// Usage:
//
//	GEMINI_API_KEY=gk-...    memorial [flags]
//	ANTHROPIC_API_KEY=sk-... memorial [flags]
//	OPENAI_API_KEY=sk-...    memorial [flags]
//
// Settings are read from built-in defaults, then ~/.memorial/config.toml,
// then the environment (a .env file in the working directory is loaded
// first), then flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/memorial"
	bt "github.com/fwojciec/memorial/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// titleGrace bounds how long shutdown waits for pending title generation.
const titleGrace = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "memorial: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "memorial",
		Short: "Converse with the Grand Councilor",
		Long: "memorial is a terminal chat client styled as imperial court " +
			"correspondence. Your messages are edicts; the model answers with memorials.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			cfg, err := loadConfig(f, cmd.Flags().Changed, os.Getenv)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, keysFromEnv(os.Getenv))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f.register(cmd)
	return cmd
}

func run(ctx context.Context, cfg config, keys apiKeys) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	prompt, err := cfg.systemPrompt()
	if err != nil {
		return err
	}

	b, err := resolveProvider(ctx, cfg, keys)
	if err != nil {
		return err
	}

	persister, closeStorage, err := openPersister(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	store := memorial.NewStore(persister, memorial.WithLogger(logger))
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("archives unreadable (%s): %w", cfg.Storage, err)
	}

	ctrl := memorial.NewController(store, b.provider, b.titler,
		memorial.WithModel(cfg.Model),
		memorial.WithSystemPrompt(prompt),
		memorial.WithControllerLogger(logger),
	)

	logger.Info("court in session", "provider", b.name, "model", cfg.Model, "storage", cfg.Storage, "data_dir", cfg.DataDir)
	tui := bt.New(store, ctrl.Send, memorial.DefaultTheme())
	if err := bt.Run(ctx, tui); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	waitTitles(ctrl, titleGrace, logger)
	logger.Info("court adjourned")
	return nil
}

// waitTitles lets in-flight title generation land in the archives, giving up
// after grace.
func waitTitles(ctrl *memorial.Controller, grace time.Duration, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		ctrl.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		logger.Warn("title generation still pending at exit")
	}
}
