package capture

import "testing"

func TestDeviceNameMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"USB Audio Device", "USB Audio Device", true},
		{"USB Audio Device", "usb audio", true},
		{"USB Audio Device", "USB", true},
		{"Built-in Microphone", "usb", false},
		{"Built-in Microphone", "microphone", true},
	}
	for _, tc := range tests {
		if got := deviceNameMatches(tc.name, tc.want); got != tc.ok {
			t.Errorf("deviceNameMatches(%q, %q) = %v, want %v", tc.name, tc.want, got, tc.ok)
		}
	}
}

func TestNewMic_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewMic(Config{SampleRate: 0, FrameSamples: 512}); err == nil {
		t.Error("NewMic with zero sample rate: want error")
	}
	if _, err := NewMic(Config{SampleRate: 16000, FrameSamples: 0}); err == nil {
		t.Error("NewMic with zero frame size: want error")
	}
}
