// Package mock provides a test double for the stt package interfaces.
//
// Use Transcriber to inject a fixed text hypothesis and inspect the sample
// buffers that were submitted for recognition.
package mock

import (
	"context"
	"sync"

	"github.com/t4paN/ava/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcriber.Transcribe.
type TranscribeCall struct {
	// Samples is a copy of the buffer passed to Transcribe.
	Samples []float32
}

// Transcriber is a mock implementation of stt.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Text is returned by every Transcribe call.
	Text string

	// TranscribeErr, if non-nil, is returned by every Transcribe call.
	TranscribeErr error

	// TranscribeCalls records every call to Transcribe in order.
	TranscribeCalls []TranscribeCall
}

// Transcribe records the call and returns Text, TranscribeErr. It respects
// context cancellation.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]float32, len(samples))
	copy(cp, samples)
	t.TranscribeCalls = append(t.TranscribeCalls, TranscribeCall{Samples: cp})

	return t.Text, t.TranscribeErr
}

// ResetCalls clears all recorded call history. Thread-safe.
func (t *Transcriber) ResetCalls() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TranscribeCalls = nil
}

// Ensure Transcriber implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Transcriber)(nil)
