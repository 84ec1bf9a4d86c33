// Package config provides the configuration schema and loader for the dial
// assistant.
package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/t4paN/ava/internal/segment"
)

// Duration wraps [time.Duration] so YAML configs can say "700ms" or "4s";
// yaml.v3 only decodes durations from integers (nanoseconds) on its own.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler, accepting either a duration
// string ("700ms") or an integer nanosecond count.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: invalid duration value: %w", err)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Audio    AudioConfig    `yaml:"audio"`
	VAD      VADConfig      `yaml:"vad"`
	STT      STTConfig      `yaml:"stt"`
	Intent   IntentConfig   `yaml:"intent"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	Contacts ContactsConfig `yaml:"contacts"`
}

// ServerConfig holds logging and diagnostics settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address serving /metrics and health probes
	// (e.g., ":9090"). Empty disables the diagnostics server.
	MetricsAddr string `yaml:"metrics_addr"`
}

// AudioConfig holds capture, endpointing, and loudness settings.
type AudioConfig struct {
	// Device names the capture device; empty selects the system default.
	Device string `yaml:"device"`

	// FrameSamples is the fixed number of samples per frame. Default: 512.
	FrameSamples int `yaml:"frame_samples"`

	// SampleRate is the capture rate in Hz. Default: 16000.
	SampleRate int `yaml:"sample_rate"`

	// SilenceTimeout is how much trailing silence closes an utterance.
	// Default: 700ms.
	SilenceTimeout Duration `yaml:"silence_timeout"`

	// MinSpeech is the least accumulated speech an utterance needs.
	// Default: 200ms.
	MinSpeech Duration `yaml:"min_speech"`

	// MaxUtterance caps a single utterance; the session is force-closed
	// when the buffer reaches it. Default: 4s.
	MaxUtterance Duration `yaml:"max_utterance"`

	// TargetRMS is the loudness level utterances are scaled to.
	// Default: 0.1.
	TargetRMS float64 `yaml:"target_rms"`
}

// VADConfig tunes the voice activity detector.
type VADConfig struct {
	// Threshold is the RMS level above which a frame counts as speech.
	// Default: 0.01.
	Threshold float64 `yaml:"threshold"`
}

// STTConfig selects and tunes the recognizer.
type STTConfig struct {
	// ModelPath points at the whisper.cpp model file. Required.
	ModelPath string `yaml:"model_path"`

	// Language is the recognition language code. Default: "el".
	Language string `yaml:"language"`
}

// IntentConfig tunes command recognition.
type IntentConfig struct {
	// Threshold is the minimum similarity for a trigger word. Default: 0.6.
	Threshold float64 `yaml:"threshold"`

	// ExtraCallWords appends trigger words to the builtin call vocabulary.
	ExtraCallWords []string `yaml:"extra_call_words"`
}

// MatcherConfig tunes contact matching.
type MatcherConfig struct {
	// AcceptThreshold is the minimum top score to report a result.
	// Default: 0.4.
	AcceptThreshold float64 `yaml:"accept_threshold"`

	// AmbiguityGap is the score gap below which top candidates are
	// reported as ambiguous. Default: 0.10.
	AmbiguityGap float64 `yaml:"ambiguity_gap"`
}

// ContactsConfig locates the phone book.
type ContactsConfig struct {
	// Path points at the contacts YAML file. Required.
	Path string `yaml:"path"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	seg := segment.DefaultConfig()
	return &Config{
		Server: ServerConfig{LogLevel: LogInfo},
		Audio: AudioConfig{
			FrameSamples:   seg.FrameSamples,
			SampleRate:     seg.SampleRate,
			SilenceTimeout: Duration(seg.SilenceTimeout),
			MinSpeech:      Duration(seg.MinSpeech),
			MaxUtterance:   Duration(4 * time.Second),
			TargetRMS:      seg.TargetRMS,
		},
		VAD:     VADConfig{Threshold: 0.01},
		STT:     STTConfig{Language: "el"},
		Intent:  IntentConfig{Threshold: 0.6},
		Matcher: MatcherConfig{AcceptThreshold: 0.4, AmbiguityGap: 0.10},
	}
}

// Segment translates the audio settings into a segmenter configuration.
func (c *Config) Segment() segment.Config {
	seg := segment.DefaultConfig()
	if c.Audio.FrameSamples > 0 {
		seg.FrameSamples = c.Audio.FrameSamples
	}
	if c.Audio.SampleRate > 0 {
		seg.SampleRate = c.Audio.SampleRate
	}
	if c.Audio.SilenceTimeout > 0 {
		seg.SilenceTimeout = c.Audio.SilenceTimeout.Std()
	}
	if c.Audio.MinSpeech > 0 {
		seg.MinSpeech = c.Audio.MinSpeech.Std()
	}
	if c.Audio.TargetRMS > 0 {
		seg.TargetRMS = c.Audio.TargetRMS
	}
	return seg
}
