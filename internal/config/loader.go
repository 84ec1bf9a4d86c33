package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied to unset fields. It is a convenience
// wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Audio.FrameSamples <= 0 {
		errs = append(errs, errors.New("audio.frame_samples must be positive"))
	}
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, errors.New("audio.sample_rate must be positive"))
	}
	if cfg.Audio.SilenceTimeout <= 0 {
		errs = append(errs, errors.New("audio.silence_timeout must be positive"))
	}
	if cfg.Audio.MinSpeech <= 0 {
		errs = append(errs, errors.New("audio.min_speech must be positive"))
	}
	if cfg.Audio.MaxUtterance <= 0 {
		errs = append(errs, errors.New("audio.max_utterance must be positive"))
	}
	if cfg.Audio.MaxUtterance > 0 && cfg.Audio.MaxUtterance.Std() <= cfg.Audio.SilenceTimeout.Std() {
		errs = append(errs, errors.New("audio.max_utterance must exceed audio.silence_timeout"))
	}
	if cfg.Audio.TargetRMS <= 0 || cfg.Audio.TargetRMS >= 1 {
		errs = append(errs, errors.New("audio.target_rms must be in (0, 1)"))
	}

	if cfg.VAD.Threshold <= 0 || cfg.VAD.Threshold >= 1 {
		errs = append(errs, errors.New("vad.threshold must be in (0, 1)"))
	}

	if cfg.STT.ModelPath == "" {
		errs = append(errs, errors.New("stt.model_path is required"))
	}

	if cfg.Intent.Threshold <= 0 || cfg.Intent.Threshold > 1 {
		errs = append(errs, errors.New("intent.threshold must be in (0, 1]"))
	}
	if cfg.Matcher.AcceptThreshold <= 0 || cfg.Matcher.AcceptThreshold > 1 {
		errs = append(errs, errors.New("matcher.accept_threshold must be in (0, 1]"))
	}
	if cfg.Matcher.AmbiguityGap <= 0 || cfg.Matcher.AmbiguityGap >= 1 {
		errs = append(errs, errors.New("matcher.ambiguity_gap must be in (0, 1)"))
	}

	if cfg.Contacts.Path == "" {
		errs = append(errs, errors.New("contacts.path is required"))
	}

	// Soft warnings for tunings that work but usually indicate a mistake.
	if cfg.Audio.SilenceTimeout.Std() > 2*time.Second {
		slog.Warn("audio.silence_timeout is unusually long; the assistant will feel sluggish",
			"silence_timeout", cfg.Audio.SilenceTimeout.Std())
	}
	if cfg.STT.Language != "" && cfg.STT.Language != "el" {
		slog.Warn("stt.language is not Greek; the normalizer and vocabularies assume Greek input",
			"language", cfg.STT.Language)
	}

	return errors.Join(errs...)
}
