package main

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Synthesis settings for the audio preview
const (
	noteAmplitude = 0.3
	fadeSeconds   = 0.01
)

// AudioRenderer synthesizes a scale into audio for preview
type AudioRenderer struct {
	sampleRate beep.SampleRate
	volume     float64 // in powers of two, 0 is unchanged
	logger     *zap.Logger
}

// toneSpan is one note laid out in samples
type toneSpan struct {
	frequency float64
	start     int
	end       int
}

// ScaleAudioStreamer generates audio from scale notes
type ScaleAudioStreamer struct {
	spans         []toneSpan
	sampleRate    beep.SampleRate
	currentSample int
	totalSamples  int
}

// NewAudioRenderer creates a new audio renderer
func NewAudioRenderer(logger *zap.Logger) *AudioRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioRenderer{
		sampleRate: beep.SampleRate(DefaultSampleRate),
		logger:     logger,
	}
}

// SetVolume sets the playback volume in powers of two (-1 halves, 1 doubles)
func (ar *AudioRenderer) SetVolume(volume float64) {
	ar.volume = volume
}

// Format returns the audio format used for rendering
func (ar *AudioRenderer) Format() beep.Format {
	return beep.Format{
		SampleRate:  ar.sampleRate,
		NumChannels: 2,
		Precision:   2,
	}
}

// NewStreamer lays the scale out in time at tempo BPM
func (ar *AudioRenderer) NewStreamer(scale *Scale, tempo int) *ScaleAudioStreamer {
	secondsPerQuarter := 60.0 / float64(tempo)

	streamer := &ScaleAudioStreamer{sampleRate: ar.sampleRate}
	position := 0.0
	for _, n := range scale.Notes {
		start := ar.sampleRate.N(time.Duration(position * float64(time.Second)))
		position += n.Duration * secondsPerQuarter
		end := ar.sampleRate.N(time.Duration(position * float64(time.Second)))
		streamer.spans = append(streamer.spans, toneSpan{
			frequency: n.Pitch.Frequency(),
			start:     start,
			end:       end,
		})
		streamer.totalSamples = end
	}
	return streamer
}

func (ar *AudioRenderer) volumeStreamer(s beep.Streamer) beep.Streamer {
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   ar.volume,
		Silent:   false,
	}
}

// RenderWAV writes the scale as a 16-bit stereo WAV file
func (ar *AudioRenderer) RenderWAV(scale *Scale, tempo int, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "Error writing WAV file")
	}

	streamer := ar.NewStreamer(scale, tempo)
	if err := wav.Encode(f, ar.volumeStreamer(streamer), ar.Format()); err != nil {
		f.Close()
		return errors.Wrap(err, "Error writing WAV file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "Error writing WAV file")
	}

	ar.logger.Debug("WAV file written",
		zap.String("path", filePath),
		zap.Int("samples", streamer.totalSamples),
		zap.Int("sampleRate", int(ar.sampleRate)))
	return nil
}

// Play plays the scale through the default audio device and blocks until
// playback ends or ctx is cancelled
func (ar *AudioRenderer) Play(ctx context.Context, scale *Scale, tempo int) error {
	err := speaker.Init(ar.sampleRate, ar.sampleRate.N(time.Second/20))
	if err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}

	done := make(chan struct{})
	streamer := ar.NewStreamer(scale, tempo)
	speaker.Play(beep.Seq(ar.volumeStreamer(streamer), beep.Callback(func() {
		close(done)
	})))

	ar.logger.Debug("playback started", zap.Duration("length", ar.sampleRate.D(streamer.totalSamples)))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Len returns the total number of samples the streamer produces
func (ss *ScaleAudioStreamer) Len() int {
	return ss.totalSamples
}

// Stream implements beep.Streamer
func (ss *ScaleAudioStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if ss.currentSample >= ss.totalSamples {
		return 0, false
	}

	for i := range samples {
		if ss.currentSample >= ss.totalSamples {
			break
		}
		sample := ss.synthesizeAt(ss.currentSample)
		samples[i][0] = sample
		samples[i][1] = sample
		ss.currentSample++
		n++
	}

	return n, true
}

// Err implements beep.Streamer
func (ss *ScaleAudioStreamer) Err() error {
	return nil
}

// synthesizeAt generates the sample at index i. Notes never overlap, so at
// most one sine is active at a time.
func (ss *ScaleAudioStreamer) synthesizeAt(i int) float64 {
	for _, span := range ss.spans {
		if i < span.start || i >= span.end {
			continue
		}

		t := float64(i-span.start) / float64(ss.sampleRate)
		remaining := float64(span.end-i) / float64(ss.sampleRate)

		// Simple envelope (fade in/out to avoid clicks)
		envelope := 1.0
		if t < fadeSeconds {
			envelope = t / fadeSeconds
		} else if remaining < fadeSeconds {
			envelope = remaining / fadeSeconds
		}

		return noteAmplitude * envelope * math.Sin(2*math.Pi*span.frequency*t)
	}
	return 0
}
