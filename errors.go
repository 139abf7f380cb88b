package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds surfaced to the user. All of them end the run with exit status 1.
var (
	ErrUnsupportedMode   = errors.New("unsupported scale mode")
	ErrScaleConstruction = errors.New("scale construction failed")
	ErrMIDIWrite         = errors.New("MIDI writing failed")
	ErrInvalidOption     = errors.New("invalid option")
	ErrInvalidKey        = errors.New("invalid root note")
)

// ModeError reports a mode name that matches none of the supported modes
type ModeError struct {
	Mode string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("Unsupported scale mode: %s", e.Mode)
}

// Is lets errors.Is(err, ErrUnsupportedMode) match any ModeError
func (e *ModeError) Is(target error) bool {
	return target == ErrUnsupportedMode
}

// kindError tags a wrapped cause with one of the sentinel kinds while
// keeping the cause's message as the visible text.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.cause.Error() }
func (e *kindError) Unwrap() error { return e.cause }
func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// scaleError wraps err as a scale construction failure
func scaleError(err error) error {
	return &kindError{kind: ErrScaleConstruction, cause: errors.Wrap(err, "Error creating scale")}
}

// midiWriteError wraps err as a MIDI writing failure
func midiWriteError(err error) error {
	return &kindError{kind: ErrMIDIWrite, cause: errors.Wrap(err, "Error writing MIDI file")}
}
