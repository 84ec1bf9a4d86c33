package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/t4paN/ava/internal/app"
	"github.com/t4paN/ava/internal/contacts"
	"github.com/t4paN/ava/internal/intent"
	"github.com/t4paN/ava/internal/match"
	"github.com/t4paN/ava/internal/segment"
	"github.com/t4paN/ava/internal/turn"
	"github.com/t4paN/ava/pkg/provider/stt"
	sttmock "github.com/t4paN/ava/pkg/provider/stt/mock"
	vadmock "github.com/t4paN/ava/pkg/provider/vad/mock"
)

// fakeSource is a capture.Source fed by the test.
type fakeSource struct {
	frames chan []int16
	errs   chan error
	once   sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		frames: make(chan []int16, 128),
		errs:   make(chan error, 4),
	}
}

func (f *fakeSource) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = f.Stop()
	}()
	return nil
}

func (f *fakeSource) Frames() <-chan []int16 { return f.frames }
func (f *fakeSource) Errors() <-chan error   { return f.errs }

func (f *fakeSource) Stop() error {
	f.once.Do(func() {
		close(f.frames)
		close(f.errs)
	})
	return nil
}

func (f *fakeSource) push(n int, value int16) {
	for i := 0; i < n; i++ {
		frame := make([]int16, 512)
		for j := range frame {
			frame[j] = value
		}
		f.frames <- frame
	}
}

func repeat(b bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func newRunner(t *testing.T, tr stt.Transcriber, names ...string) *turn.Runner {
	t.Helper()
	store := contacts.NewMemStore()
	for _, n := range names {
		if err := store.Add(context.Background(), contacts.New(n, "")); err != nil {
			t.Fatalf("Add(%q): %v", n, err)
		}
	}
	return turn.NewRunner(tr, intent.New(intent.DefaultVocabulary()), match.New(), store)
}

func TestApp_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource()
	det := &vadmock.Detector{Results: repeat(true, 10)}
	runner := newRunner(t, &sttmock.Transcriber{Text: "Κλήση Μαρία"}, "Μαρία", "Δημήτρης")
	a := app.New(src, det, runner, app.Config{Segment: segment.DefaultConfig()})

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	// 10 speech frames then silence; the endpoint fires on frame 31.
	src.push(31, 1000)

	select {
	case out := <-a.Results():
		if out.Kind != turn.OutcomeCall {
			t.Errorf("outcome kind=%v, want %v", out.Kind, turn.OutcomeCall)
		}
		if out.Contact.DisplayName != "Μαρία" {
			t.Errorf("outcome contact=%q, want Μαρία", out.Contact.DisplayName)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome within 5s")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestApp_UtteranceCeiling(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource()
	// Speech that never goes quiet.
	det := &vadmock.Detector{Fallback: true}
	runner := newRunner(t, &sttmock.Transcriber{Text: "Κλήση Μαρία"}, "Μαρία")
	a := app.New(src, det, runner, app.Config{
		Segment:      segment.DefaultConfig(),
		MaxUtterance: time.Second,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	// 40 frames is 1.28s of audio, past the 1s ceiling.
	src.push(40, 1000)

	select {
	case out := <-a.Results():
		if out.Kind != turn.OutcomeCall {
			t.Errorf("outcome kind=%v, want %v", out.Kind, turn.OutcomeCall)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome within 5s despite ceiling")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestApp_NoSpeechAtCeiling(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource()
	// A couple of isolated speech blips keep the buffer growing without ever
	// accumulating enough speech for a real utterance.
	results := append([]bool{true}, repeat(false, 20)...)
	results = append(results, true)
	det := &vadmock.Detector{Results: results}
	runner := newRunner(t, &sttmock.Transcriber{Text: "Κλήση Μαρία"}, "Μαρία")
	a := app.New(src, det, runner, app.Config{
		Segment:      segment.DefaultConfig(),
		MaxUtterance: time.Second,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	src.push(40, 1000)

	// The ceiling fires with no usable speech buffered; the loop reports
	// that instead of sending the noise to the recognizer.
	select {
	case out := <-a.Results():
		if out.Kind != turn.OutcomeNoSpeech {
			t.Errorf("outcome kind=%v, want %v", out.Kind, turn.OutcomeNoSpeech)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome within 5s despite ceiling")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run: %v", err)
	}
}

// gatedTranscriber blocks until released, so tests can interleave
// cancellation with an in-flight turn.
type gatedTranscriber struct {
	release chan struct{}
}

func (g *gatedTranscriber) Transcribe(ctx context.Context, _ []float32) (string, error) {
	select {
	case <-g.release:
		return "Κλήση Μαρία", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestApp_CancelDropsInFlightOutcome(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource()
	det := &vadmock.Detector{Results: repeat(true, 10)}
	gate := &gatedTranscriber{release: make(chan struct{})}
	runner := newRunner(t, gate, "Μαρία")
	a := app.New(src, det, runner, app.Config{Segment: segment.DefaultConfig()})

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	src.push(31, 1000)

	// The turn is now (or shortly) blocked in transcription. Cancel it,
	// then let it finish: its outcome must be dropped.
	time.Sleep(100 * time.Millisecond)
	a.Cancel()
	close(gate.release)

	select {
	case out := <-a.Results():
		t.Errorf("got outcome %v after Cancel, want none", out.Kind)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run: %v", err)
	}

	// Results closes once Run returns.
	if _, ok := <-a.Results(); ok {
		t.Error("Results still open after Run returned")
	}
}
