package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSMF assembles a format 0 file with the given division and track bodies
func buildSMF(division uint16, tracks ...[]byte) []byte {
	data := []byte("MThd")
	data = binary.BigEndian.AppendUint32(data, 6)
	data = binary.BigEndian.AppendUint16(data, 0)
	data = binary.BigEndian.AppendUint16(data, uint16(len(tracks)))
	data = binary.BigEndian.AppendUint16(data, division)
	for _, body := range tracks {
		data = append(data, "MTrk"...)
		data = binary.BigEndian.AppendUint32(data, uint32(len(body)))
		data = append(data, body...)
	}
	return data
}

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

func TestParse_RunningStatus(t *testing.T) {
	body := []byte{
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20, // tempo 500000
		0x00, 0xFF, 0x03, 0x04, 't', 'e', 's', 't', // track name
		0x00, 0xC0, 0x05, // program change
		0x00, 0x90, 0x3C, 0x64, // C4 on
		0x60, 0x3C, 0x00, // running status, velocity 0 = off
		0x00, 0x3E, 0x64, // D4 on
		0x60, 0x80, 0x3E, 0x40, // D4 off
	}
	body = append(body, endOfTrack...)

	parsed, err := NewSimpleMIDIParser(nil).Parse(buildSMF(96, body))
	require.NoError(t, err)

	assert.Equal(t, 0, parsed.Format)
	assert.Equal(t, 96, parsed.TicksPerBeat)
	assert.InDelta(t, 120.0, parsed.Tempo, 1e-9)
	require.Len(t, parsed.Tracks, 1)
	assert.Equal(t, "test", parsed.Tracks[0].Name)

	notes := parsed.AllNotes()
	require.Len(t, notes, 2)
	assert.Equal(t, 60, notes[0].Pitch)
	assert.Equal(t, 100, notes[0].Velocity)
	assert.Zero(t, notes[0].StartTime)
	assert.InDelta(t, 0.5, notes[0].Duration, 1e-9)
	assert.Equal(t, 62, notes[1].Pitch)
	assert.InDelta(t, 0.5, notes[1].StartTime, 1e-9)
	assert.InDelta(t, 0.5, notes[1].Duration, 1e-9)
}

func TestParse_TempoChange(t *testing.T) {
	body := []byte{
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20, // 120 BPM
		0x00, 0x90, 0x3C, 0x64,
		0x60, 0x80, 0x3C, 0x40, // off after 96 ticks
		0x00, 0xFF, 0x51, 0x03, 0x0F, 0x42, 0x40, // 60 BPM
		0x00, 0x90, 0x3E, 0x64,
		0x60, 0x80, 0x3E, 0x40,
	}
	body = append(body, endOfTrack...)

	parsed, err := NewSimpleMIDIParser(nil).Parse(buildSMF(96, body))
	require.NoError(t, err)

	// the reported tempo is the opening one
	assert.InDelta(t, 120.0, parsed.Tempo, 1e-9)

	notes := parsed.AllNotes()
	require.Len(t, notes, 2)
	assert.InDelta(t, 0.5, notes[0].Duration, 1e-9)
	assert.InDelta(t, 0.5, notes[1].StartTime, 1e-9)
	assert.InDelta(t, 1.0, notes[1].Duration, 1e-9)
}

func TestParse_DefaultTempoAndSysEx(t *testing.T) {
	body := []byte{
		0x00, 0xF0, 0x03, 0x7E, 0x7F, 0xF7, // sysex
		0x00, 0x91, 0x45, 0x50, // A4 on, channel 2
		0x81, 0x40, 0x81, 0x45, 0x00, // 192 ticks later, off
	}
	body = append(body, endOfTrack...)

	parsed, err := NewSimpleMIDIParser(nil).Parse(buildSMF(96, body))
	require.NoError(t, err)
	assert.InDelta(t, 120.0, parsed.Tempo, 1e-9)

	notes := parsed.AllNotes()
	require.Len(t, notes, 1)
	assert.Equal(t, 69, notes[0].Pitch)
	assert.InDelta(t, 1.0, notes[0].Duration, 1e-9)
}

func TestParse_UnterminatedNote(t *testing.T) {
	body := []byte{
		0x00, 0x90, 0x3C, 0x64,
		0x60, 0xFF, 0x2F, 0x00,
	}

	parsed, err := NewSimpleMIDIParser(nil).Parse(buildSMF(96, body))
	require.NoError(t, err)

	notes := parsed.AllNotes()
	require.Len(t, notes, 1)
	assert.InDelta(t, 0.5, notes[0].Duration, 1e-9)
}

func TestParse_Errors(t *testing.T) {
	valid := buildSMF(96, endOfTrack)

	smpte := buildSMF(0xE728, endOfTrack)
	zeroDivision := buildSMF(0, endOfTrack)

	badTrack := append([]byte(nil), valid...)
	copy(badTrack[14:], "MXrk")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte("MThd")},
		{"bad signature", append([]byte("RIFF"), valid[4:]...)},
		{"smpte division", smpte},
		{"zero division", zeroDivision},
		{"bad track signature", badTrack},
		{"missing track", valid[:14]},
		{"track too long", valid[:len(valid)-1]},
		{"data byte without status", buildSMF(96, []byte{0x00, 0x3C, 0x64})},
		{"truncated meta", buildSMF(96, []byte{0x00, 0xFF, 0x51, 0x03, 0x07})},
		{"truncated channel event", buildSMF(96, []byte{0x00, 0x90, 0x3C})},
		{"long variable length", buildSMF(96, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00})},
		{"zero tempo", buildSMF(96, []byte{0x00, 0xFF, 0x51, 0x03, 0x00, 0x00, 0x00})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewSimpleMIDIParser(nil).Parse(test.data)
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mid")
	require.NoError(t, os.WriteFile(path, buildSMF(480, endOfTrack), 0o644))

	parsed, err := NewSimpleMIDIParser(nil).ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 480, parsed.TicksPerBeat)
	assert.Empty(t, parsed.AllNotes())

	_, err = NewSimpleMIDIParser(nil).ParseFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}
