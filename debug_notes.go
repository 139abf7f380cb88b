package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser upper-cases the first letter and lower-cases the rest, so
// "pentatonicMajor" prints as "Pentatonicmajor"
var titleCaser = cases.Title(language.English)

// PrintScaleNotes prints the heading and the pitch names of the scale
func PrintScaleNotes(w io.Writer, scale *Scale, key, mode string) {
	fmt.Fprintf(w, "\n%s %s Scale:\n", key, titleCaser.String(mode))
	fmt.Fprintln(w, "Notes:", strings.Join(scale.PitchNames(), " - "))
	fmt.Fprintln(w)
}

// PrintModes lists the supported scale modes
func PrintModes(w io.Writer) {
	fmt.Fprintln(w, "Available scale modes:")
	for _, mode := range AvailableModes() {
		fmt.Fprintf(w, "  %s\n", mode)
	}
}

// DescribeMIDI prints a summary of a decoded MIDI file
func DescribeMIDI(w io.Writer, parsed *ParsedMIDI) {
	notes := parsed.AllNotes()

	fmt.Fprintf(w, "=== MIDI FILE CHECK ===\n")
	fmt.Fprintf(w, "Format %d, %d track(s), %d ticks per beat, %.0f BPM\n",
		parsed.Format, parsed.NumTracks, parsed.TicksPerBeat, parsed.Tempo)
	for i, t := range parsed.Tracks {
		fmt.Fprintf(w, "Track %d: %q, %d notes\n", i+1, t.Name, len(t.Notes))
	}

	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes to check")
		fmt.Fprintf(w, "=======================\n")
		return
	}

	for i, note := range notes {
		fmt.Fprintf(w, "Note %d: Start=%.2fs, Duration=%.2fs, Pitch=%d, Velocity=%d\n",
			i+1, note.StartTime, note.Duration, note.Pitch, note.Velocity)
	}

	last := notes[len(notes)-1]
	fmt.Fprintf(w, "Total length: %.2fs\n", last.StartTime+last.Duration)
	fmt.Fprintf(w, "=======================\n")
}
