package main

import (
	"github.com/pkg/errors"
)

// Default values for command-line options
const (
	DefaultOctaves      = 1
	DefaultTempo        = 120
	DefaultVelocity     = 90
	DefaultProgram      = 0
	DefaultResolution   = 480 // ticks per quarter note
	DefaultChannel      = 0
	DefaultSampleRate   = 44100
	MaxTempo            = 1000
	MaxOctaves          = 10
	DebugEnvironmentKey = "SCALE_MIDI_DEBUG"
)

// Options holds everything a single run needs besides the positional arguments
type Options struct {
	Octaves     int
	Tempo       int
	Velocity    int
	Program     int
	StartOctave int
	WAVPath     string
	Play        bool
	Verify      bool
	Verbose     bool
	ListModes   bool
}

// DefaultOptions returns the options used when no flags are given
func DefaultOptions() Options {
	return Options{
		Octaves:     DefaultOctaves,
		Tempo:       DefaultTempo,
		Velocity:    DefaultVelocity,
		Program:     DefaultProgram,
		StartOctave: DefaultStartOctave,
	}
}

// Validate checks option ranges. Errors match ErrInvalidOption.
func (o Options) Validate() error {
	if o.Octaves < 1 || o.Octaves > MaxOctaves {
		return errors.Wrapf(ErrInvalidOption, "octaves must be between 1 and %d, got %d", MaxOctaves, o.Octaves)
	}
	if o.Tempo < 1 || o.Tempo > MaxTempo {
		return errors.Wrapf(ErrInvalidOption, "tempo must be between 1 and %d BPM, got %d", MaxTempo, o.Tempo)
	}
	if o.Velocity < 1 || o.Velocity > 127 {
		return errors.Wrapf(ErrInvalidOption, "velocity must be between 1 and 127, got %d", o.Velocity)
	}
	if o.Program < 0 || o.Program > 127 {
		return errors.Wrapf(ErrInvalidOption, "program must be between 0 and 127, got %d", o.Program)
	}
	if o.StartOctave < -1 || o.StartOctave > 9 {
		return errors.Wrapf(ErrInvalidOption, "start octave must be between -1 and 9, got %d", o.StartOctave)
	}
	return nil
}
