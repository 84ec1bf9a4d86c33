// Command ava is the always-on Greek voice dial assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/t4paN/ava/internal/app"
	"github.com/t4paN/ava/internal/config"
	"github.com/t4paN/ava/internal/contacts"
	"github.com/t4paN/ava/internal/health"
	"github.com/t4paN/ava/internal/intent"
	"github.com/t4paN/ava/internal/match"
	"github.com/t4paN/ava/internal/observe"
	"github.com/t4paN/ava/internal/turn"
	"github.com/t4paN/ava/pkg/audio/capture"
	"github.com/t4paN/ava/pkg/provider/stt/whisper"
	"github.com/t4paN/ava/pkg/provider/vad/energy"
)

// version is stamped by the build; "dev" when built from source directly.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ava: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "ava: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("ava starting",
		"version", version,
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "ava",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Phone book ────────────────────────────────────────────────────────────
	book, err := contacts.LoadFile(cfg.Contacts.Path)
	if err != nil {
		slog.Error("failed to load contacts", "path", cfg.Contacts.Path, "err", err)
		return 1
	}
	store := contacts.NewMemStore()
	imported, err := contacts.Import(ctx, store, book)
	if err != nil {
		slog.Error("failed to import contacts", "err", err)
		return 1
	}
	slog.Info("contacts loaded", "path", cfg.Contacts.Path, "count", imported)

	// ── Recognizer ────────────────────────────────────────────────────────────
	transcriber, err := whisper.New(cfg.STT.ModelPath, whisper.WithLanguage(cfg.STT.Language))
	if err != nil {
		slog.Error("failed to load recognizer model", "path", cfg.STT.ModelPath, "err", err)
		return 1
	}
	defer func() {
		if err := transcriber.Close(); err != nil {
			slog.Warn("recognizer close error", "err", err)
		}
	}()
	slog.Info("recognizer model loaded", "path", cfg.STT.ModelPath, "language", cfg.STT.Language)

	// ── Pipeline stages ───────────────────────────────────────────────────────
	detector := energy.New(energy.WithThreshold(cfg.VAD.Threshold))

	vocab := intent.DefaultVocabulary()
	vocab.Call = append(vocab.Call, cfg.Intent.ExtraCallWords...)
	classifier := intent.New(vocab, intent.WithThreshold(cfg.Intent.Threshold))

	matcher := match.New(
		match.WithAcceptThreshold(cfg.Matcher.AcceptThreshold),
		match.WithAmbiguityGap(cfg.Matcher.AmbiguityGap),
	)

	runner := turn.NewRunner(transcriber, classifier, matcher, store)

	mic, err := capture.NewMic(capture.Config{
		SampleRate:   cfg.Audio.SampleRate,
		FrameSamples: cfg.Audio.FrameSamples,
		Device:       cfg.Audio.Device,
	})
	if err != nil {
		slog.Error("failed to set up capture", "err", err)
		return 1
	}

	application := app.New(mic, detector, runner, app.Config{
		Segment:      cfg.Segment(),
		MaxUtterance: cfg.Audio.MaxUtterance.Std(),
	})

	// ── Diagnostics server (optional) ─────────────────────────────────────────
	if cfg.Server.MetricsAddr != "" {
		srv := newDiagnosticsServer(cfg)
		go func() {
			slog.Info("diagnostics server listening", "addr", cfg.Server.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("diagnostics server error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("diagnostics server shutdown error", "err", err)
			}
		}()
	}

	// ── Listening loop ────────────────────────────────────────────────────────
	go func() {
		for out := range application.Results() {
			reportOutcome(out)
		}
	}()

	slog.Info("listening — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// reportOutcome is the device-action seam: on real hardware these branches
// drive the dialer, torch, and radio. Here they log and print.
func reportOutcome(out turn.Outcome) {
	switch out.Kind {
	case turn.OutcomeCall:
		slog.Info("calling contact",
			"contact", out.Contact.DisplayName,
			"score", out.Score,
			"transcript", out.Transcript,
		)
		fmt.Printf("→ Καλώ: %s\n", out.Contact.DisplayName)
	case turn.OutcomeAmbiguous:
		slog.Info("ambiguous contact match",
			"candidates", len(out.Alternatives),
			"transcript", out.Transcript,
		)
		fmt.Println("→ Ποιον εννοείτε;")
		for i, alt := range out.Alternatives {
			fmt.Printf("   %d. %s\n", i+1, alt.DisplayName)
		}
	case turn.OutcomeFlashlight:
		slog.Info("toggling flashlight", "transcript", out.Transcript)
		fmt.Println("→ Φακός")
	case turn.OutcomeRadio:
		slog.Info("toggling radio", "transcript", out.Transcript)
		fmt.Println("→ Ράδιο")
	case turn.OutcomeNoArgument:
		slog.Info("call command without a name", "transcript", out.Transcript)
		fmt.Println("→ Ποιον να καλέσω;")
	case turn.OutcomeNoMatch:
		slog.Info("no actionable command",
			"intent", out.Intent,
			"transcript", out.Transcript,
			"normalized", out.Normalized,
		)
	case turn.OutcomeEmptyTranscript:
		slog.Debug("recognizer produced no usable text", "transcript", out.Transcript)
	default:
		slog.Debug("no speech detected")
	}
}

// newDiagnosticsServer exposes Prometheus metrics and health probes.
func newDiagnosticsServer(cfg *config.Config) *http.Server {
	probes := health.New(
		health.Checker{Name: "model", Check: fileChecker(cfg.STT.ModelPath)},
		health.Checker{Name: "contacts", Check: fileChecker(cfg.Contacts.Path)},
	)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	probes.Register(mux)

	return &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// fileChecker reports readiness of an on-disk dependency.
func fileChecker(path string) func(context.Context) error {
	return func(context.Context) error {
		if _, err := os.Stat(path); err != nil {
			return err
		}
		return nil
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
