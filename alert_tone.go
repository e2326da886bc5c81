// alert_tone.go - Watchpoint alert tone synthesis

package main

import (
	"encoding/binary"
	"math"
)

const (
	alertSampleRate = 44100
	alertFreqHz     = 880.0
	alertDurationMs = 120
	alertAmplitude  = 0.25
	alertFadeMs     = 10
)

// alertTone returns a mono sine burst as float32 little-endian PCM. The
// first and last fadeMs are ramped to avoid clicks.
func alertTone(sampleRate int, freq float64, durationMs int) []byte {
	n := sampleRate * durationMs / 1000
	fade := min(sampleRate*alertFadeMs/1000, n/2)
	buf := make([]byte, n*4)
	for i := range n {
		gain := alertAmplitude
		if fade > 0 {
			if i < fade {
				gain *= float64(i) / float64(fade)
			} else if tail := n - 1 - i; tail < fade {
				gain *= float64(tail) / float64(fade)
			}
		}
		s := float32(gain * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}
