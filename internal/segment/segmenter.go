// Package segment turns a continuous stream of microphone frames into
// endpointed utterance buffers ready for recognition.
//
// A Session consumes fixed-size PCM frames, runs each through a voice
// activity detector, and decides where the utterance ends: enough trailing
// silence after real speech closes the segment, while a too-short blip of
// speech discards everything and starts over. The finalized buffer is
// converted to float32 and loudness-normalized so the recognizer sees a
// consistent level regardless of how far from the microphone the speaker
// stood.
package segment

import (
	"errors"
	"log/slog"
	"time"

	"github.com/t4paN/ava/pkg/audio"
	"github.com/t4paN/ava/pkg/provider/vad"
)

// preRollFrames is how many frames of leading silence are kept ahead of the
// first speech frame.
const preRollFrames = 3

// Event is the outcome of feeding one frame to a Session.
type Event int

const (
	// Continue means the session wants more frames.
	Continue Event = iota
	// SpeechEnd means the utterance is complete; call Finalize.
	SpeechEnd
)

// Config holds the endpointing and loudness parameters.
type Config struct {
	// FrameSamples is the fixed number of samples per frame. Default: 512.
	FrameSamples int

	// SampleRate is the capture rate in Hz. Default: 16000.
	SampleRate int

	// SilenceTimeout is how much trailing silence closes an utterance.
	// Default: 700ms.
	SilenceTimeout time.Duration

	// MinSpeech is the least accumulated speech an utterance needs; shorter
	// bursts are discarded as noise. Default: 200ms.
	MinSpeech time.Duration

	// TargetRMS is the loudness level Finalize scales the utterance to.
	// Default: 0.1.
	TargetRMS float64

	// PeakClamp bounds sample magnitude after scaling. Default: 0.95.
	PeakClamp float64

	// SilenceFloor is the RMS below which Finalize refuses to scale, so
	// near-silence is not amplified into noise. Default: 0.001.
	SilenceFloor float64
}

// DefaultConfig returns the tuning used in production: 32ms frames at
// 16kHz, 700ms of silence to endpoint, 200ms minimum speech.
func DefaultConfig() Config {
	return Config{
		FrameSamples:   512,
		SampleRate:     16000,
		SilenceTimeout: 700 * time.Millisecond,
		MinSpeech:      200 * time.Millisecond,
		TargetRMS:      0.1,
		PeakClamp:      0.95,
		SilenceFloor:   0.001,
	}
}

// Validate reports whether the configuration is internally consistent.
func (c Config) Validate() error {
	var errs []error
	if c.FrameSamples <= 0 {
		errs = append(errs, errors.New("segment: FrameSamples must be positive"))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, errors.New("segment: SampleRate must be positive"))
	}
	if c.SilenceTimeout <= 0 {
		errs = append(errs, errors.New("segment: SilenceTimeout must be positive"))
	}
	if c.MinSpeech <= 0 {
		errs = append(errs, errors.New("segment: MinSpeech must be positive"))
	}
	if c.TargetRMS <= 0 || c.TargetRMS >= 1 {
		errs = append(errs, errors.New("segment: TargetRMS must be in (0, 1)"))
	}
	if c.PeakClamp <= 0 || c.PeakClamp > 1 {
		errs = append(errs, errors.New("segment: PeakClamp must be in (0, 1]"))
	}
	return errors.Join(errs...)
}

// frameDuration is the wall time one frame spans.
func (c Config) frameDuration() time.Duration {
	return audio.FrameDuration(c.FrameSamples, c.SampleRate)
}

// silenceFrames is SilenceTimeout expressed in whole frames, at least 1.
func (c Config) silenceFrames() int {
	n := int(c.SilenceTimeout / c.frameDuration())
	if n < 1 {
		n = 1
	}
	return n
}

// minSpeechFrames is MinSpeech expressed in whole frames, at least 1.
func (c Config) minSpeechFrames() int {
	n := int(c.MinSpeech / c.frameDuration())
	if n < 1 {
		n = 1
	}
	return n
}

// Session accumulates one utterance. Not safe for concurrent use; the
// capture loop owns it.
type Session struct {
	cfg Config
	det vad.Detector

	samples      []int16
	speechFrames int
	silenceRun   int
	speechSeen   bool
}

// NewSession returns a Session using det for per-frame classification.
func NewSession(cfg Config, det vad.Detector) *Session {
	return &Session{cfg: cfg, det: det}
}

// ProcessFrame feeds one frame into the session. Frames of the wrong length
// are logged and skipped; detector failures count as silence so a flaky
// detector degrades to endpointing on timeout instead of wedging the
// session.
func (s *Session) ProcessFrame(frame []int16) Event {
	if len(frame) != s.cfg.FrameSamples {
		slog.Warn("segment: skipping frame of unexpected length",
			"got", len(frame), "want", s.cfg.FrameSamples)
		return Continue
	}

	speech, err := s.det.Classify(frame)
	if err != nil {
		slog.Warn("segment: detector failed, counting frame as silence", "error", err)
		speech = false
	}

	s.samples = append(s.samples, frame...)

	if speech {
		s.speechFrames++
		s.silenceRun = 0
		s.speechSeen = true
		return Continue
	}

	if !s.speechSeen {
		// Idle: keep only a short pre-roll so the buffer stays bounded
		// while nobody is speaking, but the utterance onset is not clipped.
		// This trim happens only before the first speech frame; once speech
		// starts the buffer is strictly append-only.
		if excess := len(s.samples) - preRollFrames*s.cfg.FrameSamples; excess > 0 {
			copy(s.samples, s.samples[excess:])
			s.samples = s.samples[:len(s.samples)-excess]
		}
		return Continue
	}

	s.silenceRun++
	if s.silenceRun >= s.cfg.silenceFrames() {
		if s.speechFrames >= s.cfg.minSpeechFrames() {
			return SpeechEnd
		}
		// Too short to be a command; drop it and listen again.
		s.Reset()
	}
	return Continue
}

// NoSpeech reports whether the session has accumulated no usable speech.
func (s *Session) NoSpeech() bool {
	return !s.speechSeen || s.speechFrames < s.cfg.minSpeechFrames()
}

// Duration is the wall time of audio buffered so far.
func (s *Session) Duration() time.Duration {
	if s.cfg.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.samples)) * time.Second / time.Duration(s.cfg.SampleRate)
}

// Finalize converts the buffered utterance to float32, scales it to the
// target loudness, and resets the session for the next utterance. Buffers
// quieter than the silence floor are returned unscaled. When scaling toward
// the target would push the loudest sample past PeakClamp, the gain is
// reduced so that sample lands exactly on the ceiling; one gain applies to
// every sample, so the waveform is never distorted by clipping.
func (s *Session) Finalize() []float32 {
	out := audio.Int16ToFloat32(s.samples)
	s.Reset()

	rms := audio.RMSFloat32(out)
	if rms >= s.cfg.SilenceFloor {
		gain := s.cfg.TargetRMS / rms
		if peak := audio.Peak(out); peak*gain > s.cfg.PeakClamp {
			gain = s.cfg.PeakClamp / peak
		}
		g := float32(gain)
		for i := range out {
			out[i] *= g
		}
	}
	return out
}

// Reset discards all buffered audio and counters and resets the detector.
func (s *Session) Reset() {
	s.samples = nil
	s.speechFrames = 0
	s.silenceRun = 0
	s.speechSeen = false
	s.det.Reset()
}
