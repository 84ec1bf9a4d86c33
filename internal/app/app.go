// Package app runs the always-on listening loop: microphone frames in,
// actionable outcomes out.
//
// One goroutine owns the segmentation session and consumes capture frames;
// finished utterances are handed to the turn pipeline on a worker goroutine
// so transcription of one utterance overlaps with capture of the next. A
// generation counter lets the device UI cancel: outcomes computed for a
// generation that has since been cancelled are dropped instead of delivered.
package app

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/t4paN/ava/internal/intent"
	"github.com/t4paN/ava/internal/observe"
	"github.com/t4paN/ava/internal/segment"
	"github.com/t4paN/ava/internal/turn"
	"github.com/t4paN/ava/pkg/audio/capture"
	"github.com/t4paN/ava/pkg/provider/vad"
)

// Config holds the loop settings.
type Config struct {
	// Segment configures endpointing and loudness normalization.
	Segment segment.Config

	// MaxUtterance force-closes an utterance that never goes silent.
	// Default: 4s.
	MaxUtterance time.Duration
}

// Option configures an App.
type Option func(*App)

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// App owns the listening loop.
type App struct {
	cfg     Config
	src     capture.Source
	det     vad.Detector
	runner  *turn.Runner
	metrics *observe.Metrics

	results    chan turn.Outcome
	generation atomic.Int64
}

// New wires the loop together. Run must be called exactly once.
func New(src capture.Source, det vad.Detector, runner *turn.Runner, cfg Config, opts ...Option) *App {
	if cfg.MaxUtterance <= 0 {
		cfg.MaxUtterance = 4 * time.Second
	}
	a := &App{
		cfg:     cfg,
		src:     src,
		det:     det,
		runner:  runner,
		metrics: observe.DefaultMetrics(),
		results: make(chan turn.Outcome, 8),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Results delivers one outcome per finished turn, in completion order. The
// channel closes when Run returns.
func (a *App) Results() <-chan turn.Outcome {
	return a.results
}

// Cancel invalidates every turn currently in flight; their outcomes are
// dropped. Capture keeps running.
func (a *App) Cancel() {
	a.generation.Add(1)
}

// Run captures and processes until ctx is cancelled or the source fails to
// start. It closes the Results channel on the way out.
func (a *App) Run(ctx context.Context) error {
	defer close(a.results)

	a.metrics.ActiveSessions.Add(ctx, 1)
	defer a.metrics.ActiveSessions.Add(ctx, -1)

	if err := a.src.Start(ctx); err != nil {
		return err
	}
	defer a.src.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for err := range a.src.Errors() {
			observe.Logger(ctx).Warn("app: capture", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		session := segment.NewSession(a.cfg.Segment, a.det)
		for frame := range a.src.Frames() {
			ev := session.ProcessFrame(frame)

			switch {
			case ev == segment.SpeechEnd:
				a.dispatch(ctx, g, session.Finalize())
			case session.Duration() >= a.cfg.MaxUtterance:
				// The speaker (or the background) never went quiet.
				if session.NoSpeech() {
					observe.Logger(ctx).Debug("app: utterance ceiling hit without speech")
					a.metrics.RecordTurnOutcome(ctx, intent.None.String(), turn.OutcomeNoSpeech.String())
					a.deliver(ctx, turn.Outcome{Kind: turn.OutcomeNoSpeech})
					session.Reset()
					continue
				}
				observe.Logger(ctx).Debug("app: utterance ceiling hit, forcing endpoint")
				a.dispatch(ctx, g, session.Finalize())
			}
		}
		return nil
	})

	return g.Wait()
}

// dispatch runs one turn on a worker goroutine and delivers its outcome,
// unless the generation changed while the turn was running.
func (a *App) dispatch(ctx context.Context, g *errgroup.Group, samples []float32) {
	gen := a.generation.Load()
	g.Go(func() error {
		out, err := a.runner.Run(ctx, samples)
		if err != nil {
			observe.Logger(ctx).Error("app: turn failed", "error", err)
			return nil
		}
		if gen != a.generation.Load() {
			observe.Logger(ctx).Debug("app: dropping outcome of cancelled turn")
			return nil
		}
		a.deliver(ctx, out)
		return nil
	})
}

// deliver sends one outcome downstream without ever blocking past ctx.
func (a *App) deliver(ctx context.Context, out turn.Outcome) {
	select {
	case a.results <- out:
	case <-ctx.Done():
	}
}
