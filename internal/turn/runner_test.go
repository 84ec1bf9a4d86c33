package turn_test

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/t4paN/ava/internal/contacts"
	"github.com/t4paN/ava/internal/intent"
	"github.com/t4paN/ava/internal/match"
	"github.com/t4paN/ava/internal/observe"
	"github.com/t4paN/ava/internal/turn"
	sttmock "github.com/t4paN/ava/pkg/provider/stt/mock"
)

func newStore(t *testing.T, names ...string) *contacts.MemStore {
	t.Helper()
	s := contacts.NewMemStore()
	for _, n := range names {
		if err := s.Add(context.Background(), contacts.New(n, "")); err != nil {
			t.Fatalf("Add(%q): %v", n, err)
		}
	}
	return s
}

func newRunner(t *testing.T, tr *sttmock.Transcriber, store contacts.Store, opts ...turn.Option) *turn.Runner {
	t.Helper()
	return turn.NewRunner(tr, intent.New(intent.DefaultVocabulary()), match.New(), store, opts...)
}

func TestRunner_CallMatched(t *testing.T) {
	t.Parallel()

	tr := &sttmock.Transcriber{Text: "Κλήση Δημήτρη"}
	store := newStore(t, "Δημήτρης", "Μαρία", "Γιάννα")
	r := newRunner(t, tr, store)

	out, err := r.Run(context.Background(), []float32{0.1, 0.2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != turn.OutcomeCall {
		t.Fatalf("Run: kind=%v, want %v", out.Kind, turn.OutcomeCall)
	}
	if out.Intent != intent.Call {
		t.Errorf("Run: intent=%v, want %v", out.Intent, intent.Call)
	}
	if out.Contact.DisplayName != "Δημήτρης" {
		t.Errorf("Run: contact=%q, want %q", out.Contact.DisplayName, "Δημήτρης")
	}
	if out.Score < 0.9 {
		t.Errorf("Run: score=%f, want >= 0.9", out.Score)
	}
	if out.Transcript != "Κλήση Δημήτρη" {
		t.Errorf("Run: transcript=%q, want raw hypothesis preserved", out.Transcript)
	}
	if out.Normalized != "κλισι διμιτρι" {
		t.Errorf("Run: normalized=%q, want %q", out.Normalized, "κλισι διμιτρι")
	}
	if r.LastAmbiguous() != nil {
		t.Error("LastAmbiguous() after confident match: want nil")
	}
}

func TestRunner_AmbiguousShortlist(t *testing.T) {
	t.Parallel()

	// Two contacts answer to the same first name.
	tr := &sttmock.Transcriber{Text: "Κλήση Μαρία"}
	store := newStore(t, "Μαρία Παπαδοπούλου", "Μαρία Παπαδάκη", "Δημήτρης")
	r := newRunner(t, tr, store)

	out, err := r.Run(context.Background(), []float32{0.1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != turn.OutcomeAmbiguous {
		t.Fatalf("Run: kind=%v, want %v", out.Kind, turn.OutcomeAmbiguous)
	}
	if len(out.Alternatives) != 2 {
		t.Fatalf("Run: %d alternatives, want 2", len(out.Alternatives))
	}
	if last := r.LastAmbiguous(); len(last) != 2 {
		t.Errorf("LastAmbiguous(): len=%d, want 2", len(last))
	}

	// A following unambiguous turn clears the shortlist.
	tr.Text = "Κλήση Δημήτρη"
	if _, err := r.Run(context.Background(), []float32{0.1}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.LastAmbiguous() != nil {
		t.Error("LastAmbiguous() after follow-up match: want nil")
	}
}

func TestRunner_EmptyTranscript(t *testing.T) {
	t.Parallel()

	// An empty or artifact-only hypothesis is not the same as a session
	// that heard no speech; it goes down the no-match path with its own
	// kind.
	store := newStore(t, "Μαρία")
	for _, text := range []string{"", "...", "abc 123"} {
		tr := &sttmock.Transcriber{Text: text}
		r := newRunner(t, tr, store)
		out, err := r.Run(context.Background(), []float32{0.1})
		if err != nil {
			t.Fatalf("Run(%q): %v", text, err)
		}
		if out.Kind != turn.OutcomeEmptyTranscript {
			t.Errorf("Run(%q): kind=%v, want %v", text, out.Kind, turn.OutcomeEmptyTranscript)
		}
	}
}

func TestRunner_SecondaryIntents(t *testing.T) {
	t.Parallel()

	store := newStore(t, "Μαρία")
	tests := []struct {
		text string
		want turn.OutcomeKind
	}{
		{"Φακός", turn.OutcomeFlashlight},
		{"Ράδιο", turn.OutcomeRadio},
	}
	for _, tc := range tests {
		tr := &sttmock.Transcriber{Text: tc.text}
		r := newRunner(t, tr, store)
		out, err := r.Run(context.Background(), []float32{0.1})
		if err != nil {
			t.Fatalf("Run(%q): %v", tc.text, err)
		}
		if out.Kind != tc.want {
			t.Errorf("Run(%q): kind=%v, want %v", tc.text, out.Kind, tc.want)
		}
	}
}

func TestRunner_NoIntent(t *testing.T) {
	t.Parallel()

	// A lone unknown word is never a call, so no matching happens at all.
	tr := &sttmock.Transcriber{Text: "Καλημέρα"}
	r := newRunner(t, tr, newStore(t, "Μαρία"))

	out, err := r.Run(context.Background(), []float32{0.1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != turn.OutcomeNoMatch {
		t.Errorf("Run: kind=%v, want %v", out.Kind, turn.OutcomeNoMatch)
	}
	if out.Intent != intent.None {
		t.Errorf("Run: intent=%v, want %v", out.Intent, intent.None)
	}
}

func TestRunner_FallbackCallRejectedByMatcher(t *testing.T) {
	t.Parallel()

	// Multi-word speech with no trigger is still tried as a call; the
	// matcher rejects the leftover word, not the classifier.
	tr := &sttmock.Transcriber{Text: "τι κάνεις"}
	r := newRunner(t, tr, newStore(t, "Μαρία"))

	out, err := r.Run(context.Background(), []float32{0.1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != turn.OutcomeNoMatch {
		t.Errorf("Run: kind=%v, want %v", out.Kind, turn.OutcomeNoMatch)
	}
	if out.Intent != intent.Call {
		t.Errorf("Run: intent=%v, want %v", out.Intent, intent.Call)
	}
}

func TestRunner_CallWithoutName(t *testing.T) {
	t.Parallel()

	tr := &sttmock.Transcriber{Text: "Κάλεσε τον"}
	r := newRunner(t, tr, newStore(t, "Μαρία"))

	out, err := r.Run(context.Background(), []float32{0.1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != turn.OutcomeNoArgument {
		t.Errorf("Run: kind=%v, want %v", out.Kind, turn.OutcomeNoArgument)
	}
	if out.Intent != intent.Call {
		t.Errorf("Run: intent=%v, want %v (caller can prompt for a name)", out.Intent, intent.Call)
	}
}

func TestRunner_TranscribeError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend gone")
	tr := &sttmock.Transcriber{TranscribeErr: wantErr}
	r := newRunner(t, tr, newStore(t, "Μαρία"))

	if _, err := r.Run(context.Background(), []float32{0.1}); !errors.Is(err, wantErr) {
		t.Errorf("Run: err=%v, want wrapped %v", err, wantErr)
	}
}

func TestRunner_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &sttmock.Transcriber{Text: "Κλήση Μαρία"}
	r := newRunner(t, tr, newStore(t, "Μαρία"))

	if _, err := r.Run(ctx, []float32{0.1}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run: err=%v, want context.Canceled", err)
	}
}

// panicTranscriber blows up mid-pipeline to exercise panic recovery.
type panicTranscriber struct{}

func (panicTranscriber) Transcribe(context.Context, []float32) (string, error) {
	panic("recognizer bug")
}

func TestRunner_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	r := turn.NewRunner(panicTranscriber{}, intent.New(intent.DefaultVocabulary()), match.New(), newStore(t, "Μαρία"))

	out, err := r.Run(context.Background(), []float32{0.1})
	if err != nil {
		t.Fatalf("Run after panic: err=%v, want nil", err)
	}
	if out.Kind != turn.OutcomeNoMatch {
		t.Errorf("Run after panic: kind=%v, want %v", out.Kind, turn.OutcomeNoMatch)
	}
}

func TestRunner_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	tr := &sttmock.Transcriber{Text: "Κλήση Μαρία"}
	r := newRunner(t, tr, newStore(t, "Μαρία"), turn.WithMetrics(metrics))
	if _, err := r.Run(context.Background(), []float32{0.1}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name == "ava.turn.outcomes" {
				found = true
			}
		}
	}
	if !found {
		t.Error("metric ava.turn.outcomes not recorded")
	}
}
