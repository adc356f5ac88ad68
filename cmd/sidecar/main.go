package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gswarm-sidecar/internal/config"
	"gswarm-sidecar/internal/engine"
	"gswarm-sidecar/internal/logging"
	"gswarm-sidecar/internal/model"
)

var log = logging.For("cli")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configDir string
		dataDir   string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "sidecar",
		Short: "Tails per-character game logs and fires configured triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			logging.SetLevel(level)

			dirs := config.DefaultDirectories()
			if configDir != "" {
				dirs.Config = configDir
			}
			if dataDir != "" {
				dirs.Data = dataDir
			}

			return run(dirs)
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "override the characters.yaml directory")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "override the trigger-data directory")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	return cmd
}

func run(dirs config.Directories) error {
	e, err := engine.New(dirs)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	if err := e.Load(); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := e.Init(); err != nil {
		return fmt.Errorf("initializing tailers: %w", err)
	}
	e.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go drainEvents(e, done)

	<-sigChan
	log.Info("shutting down")

	e.Stop()
	close(done)
	e.Close()

	return nil
}

// drainEvents polls the engine's outbound event bus and logs each event,
// standing in for a real UI/transport consumer (spec.md §4.F/§4.G "event()").
func drainEvents(e *engine.Engine, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			for {
				ev, ok := e.Event()
				if !ok {
					break
				}
				logEvent(ev)
			}
		}
	}
}

func logEvent(ev model.Event) {
	entry := log.WithField("created", ev.Created)
	switch ev.Kind.Tag {
	case model.EventTriggered:
		entry.WithFields(logrus.Fields{
			"character":   ev.Kind.Character.ID,
			"trigger_ref": ev.Kind.TriggerRef.String(),
		}).Info("trigger matched")
	case model.EventDisplayText:
		entry.WithField("text", ev.Kind.Text).Info("display text")
	case model.EventCountdown:
		entry.WithFields(logrus.Fields{
			"text":      ev.Kind.CountdownText,
			"remaining": ev.Kind.Remaining,
		}).Info("countdown tick")
	}
}
