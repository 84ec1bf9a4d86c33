package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/t4paN/ava/pkg/audio"
)

// frameBuffer is how many frames may queue up before the source starts
// dropping. At 32ms per frame this is roughly one second of audio.
const frameBuffer = 32

// Mic captures from the default (or named) system microphone via malgo.
type Mic struct {
	cfg Config

	frames chan []int16
	errs   chan error

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once

	mctx *malgo.AllocatedContext
	dev  *malgo.Device

	// pending accumulates decoded samples between device callbacks until a
	// full frame is available. Touched only from the audio callback.
	pending []int16
}

// Compile-time assertion that Mic satisfies the Source interface.
var _ Source = (*Mic)(nil)

// NewMic returns an unstarted microphone source.
func NewMic(cfg Config) (*Mic, error) {
	if cfg.SampleRate <= 0 || cfg.FrameSamples <= 0 {
		return nil, errors.New("capture: SampleRate and FrameSamples must be positive")
	}
	return &Mic{
		cfg:    cfg,
		frames: make(chan []int16, frameBuffer),
		errs:   make(chan error, 8),
	}, nil
}

// Start implements [Source.Start].
func (m *Mic) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("capture: already started")
	}
	m.running = true
	m.mu.Unlock()

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		m.setStopped()
		return fmt.Errorf("capture: init audio context: %w", err)
	}
	m.mctx = mctx

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.Capture.Format = malgo.FormatS16
	devCfg.Capture.Channels = 1
	devCfg.SampleRate = uint32(m.cfg.SampleRate)
	devCfg.PeriodSizeInFrames = uint32(m.cfg.FrameSamples)

	if m.cfg.Device != "" {
		id, err := findCaptureDevice(mctx, m.cfg.Device)
		if err != nil {
			m.teardownContext()
			m.setStopped()
			return fmt.Errorf("capture: %w", err)
		}
		devCfg.Capture.DeviceID = id.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			m.ingest(input)
		},
	}

	dev, err := malgo.InitDevice(mctx.Context, devCfg, callbacks)
	if err != nil {
		m.teardownContext()
		m.setStopped()
		return fmt.Errorf("capture: open device: %w", err)
	}
	m.dev = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		m.teardownContext()
		m.setStopped()
		return fmt.Errorf("capture: start device: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = m.Stop()
	}()
	return nil
}

// ingest rechunks raw device bytes into fixed-size frames. Runs on the
// audio callback thread, so it must never block.
func (m *Mic) ingest(input []byte) {
	m.pending = append(m.pending, audio.BytesToInt16(input)...)
	for len(m.pending) >= m.cfg.FrameSamples {
		frame := make([]int16, m.cfg.FrameSamples)
		copy(frame, m.pending[:m.cfg.FrameSamples])
		m.pending = m.pending[m.cfg.FrameSamples:]

		select {
		case m.frames <- frame:
		default:
			select {
			case m.errs <- errors.New("capture: consumer too slow, dropping frame"):
			default:
			}
		}
	}
	// Compact so the pending buffer does not crawl through its backing
	// array forever.
	if len(m.pending) == 0 {
		m.pending = m.pending[:0:cap(m.pending)]
	}
}

// Frames implements [Source.Frames].
func (m *Mic) Frames() <-chan []int16 { return m.frames }

// Errors implements [Source.Errors].
func (m *Mic) Errors() <-chan error { return m.errs }

// Stop implements [Source.Stop].
func (m *Mic) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.setStopped()
		if m.dev != nil {
			if e := m.dev.Stop(); e != nil {
				err = fmt.Errorf("capture: stop device: %w", e)
			}
			m.dev.Uninit()
			m.dev = nil
		}
		m.teardownContext()
		close(m.frames)
		close(m.errs)
	})
	return err
}

// findCaptureDevice resolves a configured device name to a device ID by
// enumerating the system's capture devices.
func findCaptureDevice(mctx *malgo.AllocatedContext, want string) (malgo.DeviceID, error) {
	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceID{}, fmt.Errorf("enumerate devices: %w", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if deviceNameMatches(name, want) {
			return info.ID, nil
		}
		names = append(names, name)
	}
	return malgo.DeviceID{}, fmt.Errorf("no capture device matching %q (available: %s)",
		want, strings.Join(names, ", "))
}

// deviceNameMatches reports whether a device name satisfies the configured
// one; matching is case-insensitive and partial, so "USB" picks "USB Audio
// Device".
func deviceNameMatches(name, want string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

func (m *Mic) setStopped() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

func (m *Mic) teardownContext() {
	if m.mctx != nil {
		_ = m.mctx.Uninit()
		m.mctx.Free()
		m.mctx = nil
	}
}
