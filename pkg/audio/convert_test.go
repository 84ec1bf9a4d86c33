package audio_test

import (
	"math"
	"testing"
	"time"

	"github.com/t4paN/ava/pkg/audio"
)

func TestBytesToInt16(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x00, 0x00, 0xff, 0x7f, 0x00, 0x80, 0x01}
	got := audio.BytesToInt16(pcm)

	want := []int16{0, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("BytesToInt16: got %d samples, want %d (trailing odd byte must be ignored)", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestInt16ToFloat32_Range(t *testing.T) {
	t.Parallel()

	got := audio.Int16ToFloat32([]int16{0, 16384, -32768, 32767})
	if got[0] != 0 {
		t.Errorf("sample 0: got %f, want 0", got[0])
	}
	if math.Abs(float64(got[1])-0.5) > 1e-6 {
		t.Errorf("sample 1: got %f, want 0.5", got[1])
	}
	if got[2] != -1.0 {
		t.Errorf("sample 2: got %f, want -1.0", got[2])
	}
	if got[3] >= 1.0 || got[3] < 0.999 {
		t.Errorf("sample 3: got %f, want just below 1.0", got[3])
	}
}

func TestRMS(t *testing.T) {
	t.Parallel()

	if rms := audio.RMSInt16(nil); rms != 0 {
		t.Errorf("RMSInt16(nil): got %f, want 0", rms)
	}
	if rms := audio.RMSFloat32(nil); rms != 0 {
		t.Errorf("RMSFloat32(nil): got %f, want 0", rms)
	}

	// A constant-amplitude signal has RMS equal to that amplitude.
	buf := make([]float32, 256)
	for i := range buf {
		buf[i] = 0.25
	}
	if rms := audio.RMSFloat32(buf); math.Abs(rms-0.25) > 1e-6 {
		t.Errorf("RMSFloat32(const 0.25): got %f, want 0.25", rms)
	}

	ints := make([]int16, 256)
	for i := range ints {
		ints[i] = 16384 // 0.5 full scale
	}
	if rms := audio.RMSInt16(ints); math.Abs(rms-0.5) > 1e-6 {
		t.Errorf("RMSInt16(const half-scale): got %f, want 0.5", rms)
	}
}

func TestPeak(t *testing.T) {
	t.Parallel()

	if p := audio.Peak(nil); p != 0 {
		t.Errorf("Peak(nil): got %f, want 0", p)
	}
	if p := audio.Peak([]float32{0.1, -0.9, 0.3}); math.Abs(p-0.9) > 1e-6 {
		t.Errorf("Peak: got %f, want 0.9", p)
	}
}

func TestFrameDuration(t *testing.T) {
	t.Parallel()

	if d := audio.FrameDuration(512, 16000); d != 32*time.Millisecond {
		t.Errorf("FrameDuration(512, 16000): got %v, want 32ms", d)
	}
	if d := audio.FrameDuration(512, 0); d != 0 {
		t.Errorf("FrameDuration with zero rate: got %v, want 0", d)
	}
}
