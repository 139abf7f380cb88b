package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

// MIDIProcessor turns a generated scale into a Standard MIDI File and can
// read the result back for verification
type MIDIProcessor struct {
	resolution smf.MetricTicks
	channel    uint8
	logger     *zap.Logger
}

// MIDITrack represents a single decoded track
type MIDITrack struct {
	Name  string
	Notes []MIDINote
}

// MIDINote represents a single decoded note event
type MIDINote struct {
	Pitch     int     // MIDI note number (0-127)
	Velocity  int     // Note velocity (0-127)
	StartTime float64 // Time in seconds
	Duration  float64 // Duration in seconds
}

// NewMIDIProcessor creates a new MIDI processor instance
func NewMIDIProcessor(logger *zap.Logger) *MIDIProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MIDIProcessor{
		resolution: smf.MetricTicks(DefaultResolution),
		channel:    DefaultChannel,
		logger:     logger,
	}
}

// BuildSMF lays the scale out on a single track: name, meter, tempo and
// program at tick 0, then one note after another
func (mp *MIDIProcessor) BuildSMF(scale *Scale, opts Options) (*smf.SMF, error) {
	if scale == nil || len(scale.Notes) == 0 {
		return nil, errors.New("scale has no notes")
	}

	s := smf.New()
	s.TimeFormat = mp.resolution

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("%s %s", scale.Root.Name(), scale.Mode)))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(float64(opts.Tempo)))
	tr.Add(0, midi.ProgramChange(mp.channel, uint8(opts.Program)))

	quarter := float64(mp.resolution.Ticks4th())
	for _, n := range scale.Notes {
		key := uint8(n.Pitch.MIDIKey())
		ticks := uint32(n.Duration*quarter + 0.5)
		tr.Add(0, midi.NoteOn(mp.channel, key, uint8(opts.Velocity)))
		tr.Add(ticks, midi.NoteOff(mp.channel, key))
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return nil, err
	}

	mp.logger.Debug("built MIDI track",
		zap.String("scale", string(scale.Mode)),
		zap.Int("notes", len(scale.Notes)),
		zap.Int("tempo", opts.Tempo),
		zap.Uint16("resolution", uint16(mp.resolution)))

	return s, nil
}

// EncodeMIDI returns the scale as SMF bytes
func (mp *MIDIProcessor) EncodeMIDI(scale *Scale, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := mp.encodeTo(&buf, scale, opts); err != nil {
		return nil, midiWriteError(err)
	}
	return buf.Bytes(), nil
}

// WriteMIDIFile writes the scale to filePath. Every failure matches ErrMIDIWrite.
func (mp *MIDIProcessor) WriteMIDIFile(scale *Scale, filePath string, opts Options) error {
	f, err := os.Create(filePath)
	if err != nil {
		return midiWriteError(err)
	}

	if err := mp.encodeTo(f, scale, opts); err != nil {
		f.Close()
		return midiWriteError(err)
	}

	if err := f.Close(); err != nil {
		return midiWriteError(err)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}
	mp.logger.Debug("MIDI file written", zap.String("path", absPath))
	return nil
}

func (mp *MIDIProcessor) encodeTo(w io.Writer, scale *Scale, opts Options) error {
	s, err := mp.BuildSMF(scale, opts)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// LoadMIDI reads a MIDI file back and decodes its notes
func (mp *MIDIProcessor) LoadMIDI(filePath string) (*ParsedMIDI, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, errors.Errorf("MIDI file not found: %s", filePath)
	}

	parser := NewSimpleMIDIParser(mp.logger)
	parsed, err := parser.ParseFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse MIDI file")
	}

	mp.logger.Debug("MIDI file parsed",
		zap.String("path", filePath),
		zap.Int("tracks", len(parsed.Tracks)),
		zap.Int("notes", len(parsed.AllNotes())))
	return parsed, nil
}

// VerifyScale checks that a decoded file plays exactly the notes of scale
func (mp *MIDIProcessor) VerifyScale(parsed *ParsedMIDI, scale *Scale) error {
	notes := parsed.AllNotes()
	if len(notes) != len(scale.Notes) {
		return errors.Errorf("expected %d notes, file has %d", len(scale.Notes), len(notes))
	}
	for i, n := range notes {
		if want := scale.Notes[i].Pitch.MIDIKey(); n.Pitch != want {
			return errors.Errorf("note %d: expected key %d (%s), file has %d", i+1, want, scale.Notes[i].Pitch, n.Pitch)
		}
	}
	return nil
}
