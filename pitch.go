package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Default octave the scale starts in when the key has no explicit octave
const DefaultStartOctave = 4

// letterNames are the natural note letters in diatonic order starting at C
var letterNames = [7]string{"C", "D", "E", "F", "G", "A", "B"}

// letterSemitones is the pitch class of each natural letter
var letterSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// accidentalTokens maps the accepted accidental spellings to their semitone offset.
// "-" is the flat sign in names such as "B-".
var accidentalTokens = map[string]int{
	"#": 1,
	"♯": 1,
	"x": 2,
	"b": -1,
	"-": -1,
	"♭": -1,
}

// Pitch is a spelled pitch: a letter, an accidental and an octave.
// C4 is middle C (MIDI key 60).
type Pitch struct {
	Letter     int // 0=C ... 6=B
	Accidental int // -2 double flat ... +2 double sharp
	Octave     int
}

// Interval is a spelled interval: how many letters to move and how many semitones
type Interval struct {
	Steps     int
	Semitones int
}

// Common intervals used by the scale tables
var (
	P1 = Interval{0, 0}
	A1 = Interval{0, 1}
	m2 = Interval{1, 1}
	M2 = Interval{1, 2}
	m3 = Interval{2, 3}
	M3 = Interval{2, 4}
	P4 = Interval{3, 5}
	A4 = Interval{3, 6}
	d5 = Interval{4, 6}
	P5 = Interval{4, 7}
	A5 = Interval{4, 8}
	m6 = Interval{5, 8}
	M6 = Interval{5, 9}
	A6 = Interval{5, 10}
	m7 = Interval{6, 10}
	M7 = Interval{6, 11}
	P8 = Interval{7, 12}
)

// ParsePitch parses a note name such as "C", "f#", "Bb", "E-", "C##5" or "B♭3".
// When the name carries no octave, defaultOctave is used.
func ParsePitch(name string, defaultOctave int) (Pitch, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return Pitch{}, errors.Wrap(ErrInvalidKey, "empty note name")
	}

	letter := strings.IndexByte("CDEFGAB", byte(strings.ToUpper(s[:1])[0]))
	if letter < 0 {
		return Pitch{}, errors.Wrapf(ErrInvalidKey, "%q", name)
	}

	p := Pitch{Letter: letter, Octave: defaultOctave}
	rest := s[1:]

	sharps, flats := false, false
	for rest != "" {
		matched := false
		for token, delta := range accidentalTokens {
			if strings.HasPrefix(rest, token) {
				p.Accidental += delta
				rest = rest[len(token):]
				sharps = sharps || delta > 0
				flats = flats || delta < 0
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}

	if sharps && flats {
		return Pitch{}, errors.Wrapf(ErrInvalidKey, "%q: mixes sharps and flats", name)
	}

	if p.Accidental < -2 || p.Accidental > 2 {
		return Pitch{}, errors.Wrapf(ErrInvalidKey, "%q: too many accidentals", name)
	}

	if rest != "" {
		octave, err := strconv.Atoi(rest)
		if err != nil {
			return Pitch{}, errors.Wrapf(ErrInvalidKey, "%q", name)
		}
		p.Octave = octave
	}

	return p, nil
}

// Transpose moves the pitch up by interval, keeping correct letter spelling
func (p Pitch) Transpose(iv Interval) Pitch {
	steps := p.Letter + iv.Steps
	out := Pitch{
		Letter: floorMod(steps, 7),
		Octave: p.Octave + floorDiv(steps, 7),
	}
	target := p.MIDIKey() + iv.Semitones
	natural := (out.Octave+1)*12 + letterSemitones[out.Letter]
	out.Accidental = target - natural
	return out
}

// MIDIKey returns the MIDI key number of the pitch (C4 = 60)
func (p Pitch) MIDIKey() int {
	return (p.Octave+1)*12 + letterSemitones[p.Letter] + p.Accidental
}

// Frequency returns the equal-tempered frequency of the pitch in Hz
func (p Pitch) Frequency() float64 {
	return midiToFrequency(p.MIDIKey())
}

// Name returns the pitch name without octave, e.g. "F#" or "Bb"
func (p Pitch) Name() string {
	acc := ""
	switch {
	case p.Accidental > 0:
		acc = strings.Repeat("#", p.Accidental)
	case p.Accidental < 0:
		acc = strings.Repeat("b", -p.Accidental)
	}
	return letterNames[p.Letter] + acc
}

// String returns the pitch name with octave, e.g. "F#4"
func (p Pitch) String() string {
	return p.Name() + strconv.Itoa(p.Octave)
}

// midiToFrequency converts a MIDI note number to frequency in Hz
func midiToFrequency(midiNote int) float64 {
	// A4 (MIDI note 69) = 440 Hz
	return 440.0 * math.Pow(2.0, float64(midiNote-69)/12.0)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
