// Package mock provides a test double for the vad package interfaces.
//
// Use Detector to script per-frame classifications and inspect the frames
// that were submitted:
//
//	det := &mock.Detector{Results: []bool{true, true, false}}
//	speech, _ := det.Classify(frame) // true, true, false, false, ...
package mock

import (
	"sync"

	"github.com/t4paN/ava/pkg/provider/vad"
)

// Detector is a mock implementation of vad.Detector.
type Detector struct {
	mu sync.Mutex

	// Results is consumed one entry per Classify call. Once exhausted,
	// Classify returns Fallback.
	Results []bool

	// Fallback is returned after Results is exhausted. Zero value: false.
	Fallback bool

	// ClassifyErr, if non-nil, is returned by every Classify call together
	// with a false classification.
	ClassifyErr error

	// --- Call records ---

	// Frames records a copy of every frame passed to Classify, in order.
	Frames [][]int16

	// ResetCallCount is the number of times Reset was called.
	ResetCallCount int

	next int
}

// Classify records the call and returns the next scripted result.
func (d *Detector) Classify(frame []int16) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp := make([]int16, len(frame))
	copy(cp, frame)
	d.Frames = append(d.Frames, cp)

	if d.ClassifyErr != nil {
		return false, d.ClassifyErr
	}
	if d.next < len(d.Results) {
		r := d.Results[d.next]
		d.next++
		return r, nil
	}
	return d.Fallback, nil
}

// Reset records the call by incrementing ResetCallCount.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ResetCallCount++
}

// ResetCalls clears all recorded call history and rewinds the script.
// Thread-safe.
func (d *Detector) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Frames = nil
	d.ResetCallCount = 0
	d.next = 0
}

// Ensure Detector implements vad.Detector at compile time.
var _ vad.Detector = (*Detector)(nil)
