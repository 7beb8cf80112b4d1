// Package serve implements the "rosa serve" command: it boots the
// ConfigStore, constructs the Handler, connects and starts the
// configured acquisitor, and blocks in a poll loop that stands in for
// the UI: it forwards pending log records and logs at debug level when a
// new spectrum has arrived.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Guilherme32/rosa-go/internal/config"
	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
	"github.com/Guilherme32/rosa-go/internal/handler"
	"github.com/Guilherme32/rosa-go/internal/logbus"
	"github.com/Guilherme32/rosa-go/internal/logging"
)

// Command builds the "serve" subcommand, reading the global config
// directory from opts (populated by the root command's PersistentPreRunE
// before RunE fires).
func Command(opts *config.CLIOptions) *cobra.Command {
	var acquisitorOverride string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Boot the Handler and start acquiring spectra",
		Long:  "Connects the configured acquisitor and continuously acquires spectra, logging at debug level when new spectra arrive, in place of a UI poll loop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, acquisitorOverride)
		},
	}

	if err := setupFlags(cmd, &acquisitorOverride); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, acquisitorOverride *string) error {
	cmd.Flags().StringVar(acquisitorOverride, "acquisitor", viper.GetString("serve.acquisitor"),
		"Override the configured acquisitor kind for this run: synthetic, file-watcher, or serial")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func run(ctx context.Context, opts *config.CLIOptions, acquisitorOverride string) error {
	store := config.NewAt(opts.ConfigDir)
	cfg, err := store.LoadHandlerConfig()
	if err != nil {
		return fmt.Errorf("loading handler config: %w", err)
	}

	kind, err := parseAcquisitorOverride(acquisitorOverride)
	if err != nil {
		return err
	}
	if kind != "" {
		cfg.AcquisitorKind = kind
	}

	bus := logbus.New()
	h, err := handler.New(cfg, store, bus)
	if err != nil {
		return fmt.Errorf("constructing handler: %w", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := h.Connect(runCtx); err != nil {
		return fmt.Errorf("connecting acquisitor: %w", err)
	}
	defer func() {
		if err := h.Disconnect(context.Background()); err != nil {
			logging.Warn("disconnect on shutdown failed", "error", err)
		}
	}()

	if err := h.StartReading(runCtx, false); err != nil {
		return fmt.Errorf("starting acquisition: %w", err)
	}
	defer func() {
		if err := h.StopReading(context.Background()); err != nil {
			logging.Warn("stop reading on shutdown failed", "error", err)
		}
	}()

	if svcLog := logging.ForService("serve"); svcLog != nil {
		svcLog.Info("rosa serve started", "config_dir", opts.ConfigDir, "acquisitor", cfg.AcquisitorKind, "debug", opts.Debug)
	}
	if hr := logging.HumanReadable(); hr != nil {
		hr.Info("listening for spectra", "acquisitor", cfg.AcquisitorKind)
	}

	pollLoop(runCtx, h, bus)

	if sl := logging.Structured(); sl != nil {
		sl.Info("rosa serve stopped", "acquisitor", cfg.AcquisitorKind)
	}
	return nil
}

// pollLoop mirrors the UI's poll cycle: every tick it drains pending log
// records and, if a spectrum has arrived since the last tick, renders
// and logs that a new one was acquired.
func pollLoop(ctx context.Context, h *handler.Handler, bus *logbus.Bus) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logging.Trace("poll tick")
			for _, rec := range bus.Drain() {
				logging.Info(rec.Msg, "level", rec.Level.String())
			}

			if !h.UnreadSpectrum() {
				continue
			}
			if _, ok := h.GetLastSpectrumPath(800, 400); ok {
				logging.Debug("spectrum acquired")
			}
		}
	}
}

func parseAcquisitorOverride(raw string) (config.AcquisitorKind, error) {
	switch raw {
	case "":
		return "", nil
	case "synthetic":
		return config.KindSynthetic, nil
	case "file-watcher":
		return config.KindFileWatcher, nil
	case "serial":
		return config.KindSerial, nil
	default:
		return "", apperrors.ValidationError(fmt.Sprintf("unknown --acquisitor value %q: want synthetic, file-watcher, or serial", raw))
	}
}
