// Package audio provides PCM sample utilities shared by the capture,
// segmentation, and transcription layers: little-endian byte decoding,
// int16 ↔ float32 conversion, and RMS loudness measurement.
//
// All functions operate on mono 16-bit signed PCM unless stated otherwise
// and allocate a fresh output slice; inputs are never modified.
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// BytesToInt16 decodes 16-bit signed little-endian PCM bytes into int16
// samples. Any trailing odd byte is silently ignored.
func BytesToInt16(pcm []byte) []int16 {
	n := len(pcm) / 2
	samples := make([]int16, n)
	for i := range n {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return samples
}

// Int16ToFloat32 converts int16 samples to float32 samples normalised to the
// range [-1.0, 1.0].
func Int16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// RMSInt16 returns the root-mean-square amplitude of int16 samples,
// normalised to full scale so the result is comparable with float32 RMS.
// Returns 0 for an empty slice.
func RMSInt16(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// RMSFloat32 returns the root-mean-square amplitude of float32 samples.
// Returns 0 for an empty slice.
func RMSFloat32(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value in the buffer.
// Returns 0 for an empty slice.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// FrameDuration returns the wall-clock duration of a frame of frameSamples
// mono samples at sampleRate Hz. Returns 0 when sampleRate is not positive.
func FrameDuration(frameSamples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frameSamples) * time.Second / time.Duration(sampleRate)
}
