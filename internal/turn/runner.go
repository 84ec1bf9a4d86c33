// Package turn runs the understanding pipeline for one endpointed
// utterance: transcription, normalization, intent classification, and
// contact matching, producing a single actionable outcome.
package turn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/t4paN/ava/internal/contacts"
	"github.com/t4paN/ava/internal/greek"
	"github.com/t4paN/ava/internal/intent"
	"github.com/t4paN/ava/internal/match"
	"github.com/t4paN/ava/internal/observe"
	"github.com/t4paN/ava/pkg/provider/stt"
)

// OutcomeKind classifies what a finished turn asks the device to do.
type OutcomeKind int

const (
	// OutcomeNoSpeech means the capture session ended without detecting
	// speech. Emitted at the session level, never by the runner.
	OutcomeNoSpeech OutcomeKind = iota
	// OutcomeEmptyTranscript means the recognizer produced no usable text
	// for an utterance that did contain speech.
	OutcomeEmptyTranscript
	// OutcomeNoMatch means the utterance was understood but nothing
	// actionable came out of it.
	OutcomeNoMatch
	// OutcomeNoArgument means a call command named nobody; the caller can
	// prompt for a name.
	OutcomeNoArgument
	// OutcomeCall means a single contact was confidently matched.
	OutcomeCall
	// OutcomeAmbiguous means several contacts scored too close; the user
	// must pick from Alternatives.
	OutcomeAmbiguous
	// OutcomeFlashlight toggles the torch.
	OutcomeFlashlight
	// OutcomeRadio toggles the FM radio.
	OutcomeRadio
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmptyTranscript:
		return "empty_transcript"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeNoArgument:
		return "no_argument"
	case OutcomeCall:
		return "call"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeFlashlight:
		return "flashlight"
	case OutcomeRadio:
		return "radio"
	default:
		return "no_speech"
	}
}

// Outcome is the result of one turn.
type Outcome struct {
	Kind OutcomeKind

	// Transcript is the raw recognizer hypothesis, kept for logging.
	Transcript string

	// Normalized is the canonical form the pipeline operated on.
	Normalized string

	// Intent is the recognized command, which can be set even when Kind is
	// OutcomeNoMatch (a call command whose name found nobody).
	Intent intent.Intent

	// Contact is the matched contact for OutcomeCall.
	Contact contacts.Contact

	// Score is the winning match score for OutcomeCall and
	// OutcomeAmbiguous.
	Score float64

	// Alternatives is the shortlist for OutcomeAmbiguous, best first.
	Alternatives []contacts.Contact
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// Runner executes turns. Safe for concurrent use, though the capture loop
// normally runs one turn at a time.
type Runner struct {
	transcriber stt.Transcriber
	classifier  *intent.Classifier
	matcher     *match.Matcher
	store       contacts.Store
	metrics     *observe.Metrics

	mu            sync.Mutex
	lastAmbiguous []contacts.Contact
}

// NewRunner wires the pipeline stages together.
func NewRunner(t stt.Transcriber, c *intent.Classifier, m *match.Matcher, store contacts.Store, opts ...Option) *Runner {
	r := &Runner{
		transcriber: t,
		classifier:  c,
		matcher:     m,
		store:       store,
		metrics:     observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// LastAmbiguous returns the shortlist of the most recent ambiguous turn, or
// nil when the last turn was not ambiguous. The device UI uses it to offer
// a pick list.
func (r *Runner) LastAmbiguous() []contacts.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastAmbiguous
}

// Run executes one turn over a finalized utterance buffer. A recognizer
// failure is returned as an error; everything downstream of recognition is
// total and cannot fail, but a panic in any stage is recovered into an
// OutcomeNoMatch so one bad utterance cannot take down the capture loop.
func (r *Runner) Run(ctx context.Context, samples []float32) (out Outcome, err error) {
	ctx, span := observe.StartSpan(ctx, "turn.run")
	defer span.End()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			observe.Logger(ctx).Error("turn: recovered from panic", "panic", rec)
			out = Outcome{Kind: OutcomeNoMatch}
			err = nil
		}
		r.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
		r.metrics.RecordTurnOutcome(ctx, out.Intent.String(), out.Kind.String())
	}()

	tStart := time.Now()
	text, err := r.transcriber.Transcribe(ctx, samples)
	r.metrics.TranscribeDuration.Record(ctx, time.Since(tStart).Seconds())
	if err != nil {
		return Outcome{}, fmt.Errorf("turn: transcribe: %w", err)
	}

	out.Transcript = text
	out.Normalized = greek.Normalize(text)
	if out.Normalized == "" {
		// Nothing survived normalization (empty hypothesis or pure
		// artifact glyphs). Distinct from a session that heard no speech.
		out.Kind = OutcomeEmptyTranscript
		r.setAmbiguous(nil)
		return out, nil
	}

	var remainder string
	out.Intent, remainder = r.classifier.Classify(out.Normalized)

	switch out.Intent {
	case intent.Flashlight:
		out.Kind = OutcomeFlashlight
		r.setAmbiguous(nil)
		return out, nil
	case intent.Radio:
		out.Kind = OutcomeRadio
		r.setAmbiguous(nil)
		return out, nil
	case intent.None:
		out.Kind = OutcomeNoMatch
		r.setAmbiguous(nil)
		return out, nil
	}

	// Call intent with nobody named.
	if remainder == "" {
		out.Kind = OutcomeNoArgument
		r.setAmbiguous(nil)
		return out, nil
	}

	list, err := r.store.List(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("turn: list contacts: %w", err)
	}

	byName := make(map[string]contacts.Contact, len(list))
	cands := make([]match.Candidate, 0, len(list))
	for _, c := range list {
		byName[c.DisplayName] = c
		cands = append(cands, match.Candidate{Name: c.DisplayName, Forms: c.Forms()})
	}

	mStart := time.Now()
	res := r.matcher.Match(remainder, cands)
	r.metrics.MatchDuration.Record(ctx, time.Since(mStart).Seconds())

	switch res.Decision {
	case match.DecisionMatch:
		out.Kind = OutcomeCall
		out.Contact = byName[res.Best.Candidate.Name]
		out.Score = res.Best.Score
		r.setAmbiguous(nil)
	case match.DecisionAmbiguous:
		out.Kind = OutcomeAmbiguous
		out.Score = res.Best.Score
		for _, alt := range res.Alternatives {
			out.Alternatives = append(out.Alternatives, byName[alt.Candidate.Name])
		}
		r.setAmbiguous(out.Alternatives)
	default:
		out.Kind = OutcomeNoMatch
		r.setAmbiguous(nil)
	}
	return out, nil
}

func (r *Runner) setAmbiguous(alts []contacts.Contact) {
	r.mu.Lock()
	r.lastAmbiguous = alts
	r.mu.Unlock()
}
