package main

import (
	"strings"

	"github.com/pkg/errors"
)

// ScaleMode names one of the supported interval patterns
type ScaleMode string

const (
	ModeMajor           ScaleMode = "major"
	ModeMinor           ScaleMode = "minor"
	ModeDorian          ScaleMode = "dorian"
	ModePhrygian        ScaleMode = "phrygian"
	ModeLydian          ScaleMode = "lydian"
	ModeMixolydian      ScaleMode = "mixolydian"
	ModeLocrian         ScaleMode = "locrian"
	ModeMelodicMinor    ScaleMode = "melodicMinor"
	ModeHarmonicMinor   ScaleMode = "harmonicMinor"
	ModePentatonicMajor ScaleMode = "pentatonicMajor"
	ModePentatonicMinor ScaleMode = "pentatonicMinor"
	ModeBlues           ScaleMode = "blues"
	ModeChromatic       ScaleMode = "chromatic"
	ModeWholeTone       ScaleMode = "wholeTone"
	ModeOctatonic       ScaleMode = "octatonic"
)

// Note durations in quarter-note lengths
const (
	EighthNote  = 0.5
	QuarterNote = 1.0
)

// availableModes keeps the listing order stable
var availableModes = []ScaleMode{
	ModeMajor,
	ModeMinor,
	ModeDorian,
	ModePhrygian,
	ModeLydian,
	ModeMixolydian,
	ModeLocrian,
	ModeMelodicMinor,
	ModeHarmonicMinor,
	ModePentatonicMajor,
	ModePentatonicMinor,
	ModeBlues,
	ModeChromatic,
	ModeWholeTone,
	ModeOctatonic,
}

// scaleIntervals holds one octave of each mode, measured from the root.
// The octave tonic is not part of the table.
var scaleIntervals = map[ScaleMode][]Interval{
	ModeMajor:         {P1, M2, M3, P4, P5, M6, M7},
	ModeMinor:         {P1, M2, m3, P4, P5, m6, m7},
	ModeDorian:        {P1, M2, m3, P4, P5, M6, m7},
	ModePhrygian:      {P1, m2, m3, P4, P5, m6, m7},
	ModeLydian:        {P1, M2, M3, A4, P5, M6, M7},
	ModeMixolydian:    {P1, M2, M3, P4, P5, M6, m7},
	ModeLocrian:       {P1, m2, m3, P4, d5, m6, m7},
	ModeMelodicMinor:  {P1, M2, m3, P4, P5, M6, M7},
	ModeHarmonicMinor: {P1, M2, m3, P4, P5, m6, M7},
	// 1 2 3 5 6
	ModePentatonicMajor: {P1, M2, M3, P5, M6},
	// 1 b3 4 5 b7
	ModePentatonicMinor: {P1, m3, P4, P5, m7},
	// 1 b3 4 b5 5 b7
	ModeBlues:     {P1, m3, P4, d5, P5, m7},
	// flats for the minor degrees, sharp fourth
	ModeChromatic: {P1, m2, M2, m3, M3, P4, A4, P5, m6, M6, m7, M7},
	ModeWholeTone: {P1, M2, M3, A4, A5, A6},
	// whole-half diminished
	ModeOctatonic: {P1, M2, m3, P4, d5, m6, M6, M7},
}

// ScaleNote is a single note of a generated scale
type ScaleNote struct {
	Pitch    Pitch
	Duration float64 // in quarter notes
}

// Scale is the ordered note sequence produced for a key, mode and octave count
type Scale struct {
	Key     string
	Root    Pitch
	Mode    ScaleMode
	Octaves int
	Notes   []ScaleNote
}

// AvailableModes returns the supported mode names in listing order
func AvailableModes() []ScaleMode {
	modes := make([]ScaleMode, len(availableModes))
	copy(modes, availableModes)
	return modes
}

// ValidateMode matches mode case-insensitively against the supported modes
// and returns the canonical spelling.
func ValidateMode(mode string) (ScaleMode, error) {
	for _, available := range availableModes {
		if strings.EqualFold(mode, string(available)) {
			return available, nil
		}
	}
	return "", &ModeError{Mode: mode}
}

// IsSupportedMode reports whether mode names one of the supported modes
func IsSupportedMode(mode string) bool {
	_, err := ValidateMode(mode)
	return err == nil
}

// CreateScale builds the note sequence for key and mode over the given number
// of octaves, starting in DefaultStartOctave unless the key names an octave.
func CreateScale(key, mode string, octaves int) (*Scale, error) {
	return CreateScaleFrom(key, mode, octaves, DefaultStartOctave)
}

// CreateScaleFrom is CreateScale with an explicit start octave.
// Every generated note is an eighth note; a final quarter-note tonic one
// octave above the last generated octave closes the sequence.
func CreateScaleFrom(key, mode string, octaves, startOctave int) (*Scale, error) {
	validMode, err := ValidateMode(mode)
	if err != nil {
		return nil, scaleError(err)
	}

	if octaves < 1 {
		return nil, scaleError(errors.Wrapf(ErrInvalidOption, "octave count must be at least 1, got %d", octaves))
	}

	root, err := ParsePitch(key, startOctave)
	if err != nil {
		return nil, scaleError(err)
	}

	intervals := scaleIntervals[validMode]
	notes := make([]ScaleNote, 0, len(intervals)*octaves+1)

	for octave := 0; octave < octaves; octave++ {
		base := root.Transpose(Interval{Steps: P8.Steps * octave, Semitones: P8.Semitones * octave})
		for _, iv := range intervals {
			notes = append(notes, ScaleNote{Pitch: base.Transpose(iv), Duration: EighthNote})
		}
	}

	tonic := root.Transpose(Interval{Steps: P8.Steps * octaves, Semitones: P8.Semitones * octaves})
	notes = append(notes, ScaleNote{Pitch: tonic, Duration: QuarterNote})

	for _, n := range notes {
		if k := n.Pitch.MIDIKey(); k < 0 || k > 127 {
			return nil, scaleError(errors.Errorf("note %s (MIDI key %d) is outside the MIDI range 0-127", n.Pitch, k))
		}
	}

	return &Scale{
		Key:     key,
		Root:    root,
		Mode:    validMode,
		Octaves: octaves,
		Notes:   notes,
	}, nil
}

// PitchNames returns the printable names of all notes, e.g. "C4"
func (s *Scale) PitchNames() []string {
	names := make([]string, len(s.Notes))
	for i, n := range s.Notes {
		names[i] = n.Pitch.String()
	}
	return names
}

// TotalQuarterNotes returns the length of the scale in quarter notes
func (s *Scale) TotalQuarterNotes() float64 {
	var total float64
	for _, n := range s.Notes {
		total += n.Duration
	}
	return total
}
