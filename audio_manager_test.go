package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleAudioStreamer_Length(t *testing.T) {
	scale, err := CreateScale("C", "major", 1)
	require.NoError(t, err)

	renderer := NewAudioRenderer(nil)
	streamer := renderer.NewStreamer(scale, 120)

	// 7 eighths and a quarter at 120 BPM
	assert.Equal(t, 99225, streamer.Len())

	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := streamer.Stream(buf)
		if !ok {
			break
		}
		for _, s := range buf[:n] {
			assert.Equal(t, s[0], s[1])
			peak = math.Max(peak, math.Abs(s[0]))
		}
		total += n
	}
	assert.Equal(t, streamer.Len(), total)
	assert.LessOrEqual(t, peak, noteAmplitude)
	assert.Greater(t, peak, 0.0)
	assert.NoError(t, streamer.Err())
}

func TestScaleAudioStreamer_Envelope(t *testing.T) {
	scale, err := CreateScale("A", "minor", 1)
	require.NoError(t, err)

	streamer := NewAudioRenderer(nil).NewStreamer(scale, 120)
	assert.Zero(t, streamer.synthesizeAt(0))
	assert.Zero(t, streamer.synthesizeAt(streamer.Len()))
}

func TestRenderWAV(t *testing.T) {
	scale, err := CreateScale("C", "major", 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "preview.wav")
	renderer := NewAudioRenderer(nil)
	renderer.SetVolume(-1)
	require.NoError(t, renderer.RenderWAV(scale, 120, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	d := gowav.NewDecoder(f)
	require.True(t, d.IsValidFile())
	assert.Equal(t, uint32(DefaultSampleRate), d.SampleRate)
	assert.Equal(t, uint16(2), d.NumChans)
	assert.Equal(t, uint16(16), d.BitDepth)

	pcm, err := os.Open(path)
	require.NoError(t, err)
	defer pcm.Close()

	buf, err := gowav.NewDecoder(pcm).FullPCMBuffer()
	require.NoError(t, err)
	assert.Len(t, buf.Data, 99225*2)
}

func TestRenderWAV_Unwritable(t *testing.T) {
	scale, err := CreateScale("C", "major", 1)
	require.NoError(t, err)

	err = NewAudioRenderer(nil).RenderWAV(scale, 120, filepath.Join(t.TempDir(), "missing", "out.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error writing WAV file")
}

func TestPlay_Cancelled(t *testing.T) {
	if os.Getenv("SCALE_MIDI_AUDIO_TESTS") == "" {
		t.Skip("set SCALE_MIDI_AUDIO_TESTS to run tests that open the audio device")
	}

	scale, err := CreateScale("C", "major", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewAudioRenderer(nil).Play(ctx, scale, 120)
	assert.ErrorIs(t, err, context.Canceled)
}
