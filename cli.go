package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const missingArgumentsMessage = "Error: All three arguments (key, mode, output_file) are required."

// exitCode is returned from the command once the failure has been reported
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// newRootCommand builds the scale-midi command. Output goes to out, flag
// errors are reported by run.
func newRootCommand(out io.Writer) *cobra.Command {
	opts := DefaultOptions()

	cmd := &cobra.Command{
		Use:   "scale-midi [flags] key mode output_file",
		Short: "Generate musical scales and write them to MIDI files",
		Long: `scale-midi generates a musical scale from a root note, a mode and an
octave count and writes it to a Standard MIDI File as a run of eighth
notes closed by a quarter-note tonic.`,
		Example: `  scale-midi C major output.mid                  # Write C major scale to output.mid
  scale-midi F# minor f_sharp_minor.mid          # Write F# minor scale to file
  scale-midi Bb dorian -o 2 dorian.mid           # Write Bb dorian scale over 2 octaves
  scale-midi D pentatonicMajor -t 140 penta.mid  # Write D major pentatonic at 140 BPM
  scale-midi --list-modes                        # Show available modes`,
		Args:          cobra.MaximumNArgs(3),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScale(cmd, args, opts, out)
		},
	}

	cmd.SetOut(out)

	flags := cmd.Flags()
	flags.IntVarP(&opts.Octaves, "octaves", "o", DefaultOctaves, "Number of octaves to generate")
	flags.IntVarP(&opts.Tempo, "tempo", "t", DefaultTempo, "Playback tempo in BPM")
	flags.BoolVar(&opts.ListModes, "list-modes", false, "List all available scale modes")
	flags.IntVar(&opts.Velocity, "velocity", DefaultVelocity, "Note velocity (1-127)")
	flags.IntVar(&opts.Program, "program", DefaultProgram, "General MIDI program number (0-127)")
	flags.IntVar(&opts.StartOctave, "start-octave", DefaultStartOctave, "Octave of the root note when the key names none")
	flags.StringVar(&opts.WAVPath, "wav", "", "Also render an audio preview to this WAV file")
	flags.BoolVar(&opts.Play, "play", false, "Play the scale through the default audio device")
	flags.BoolVar(&opts.Verify, "verify", false, "Read the written MIDI file back and check its notes")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug information to stderr")

	return cmd
}

// runScale is the body of the root command. Failures are printed to out and
// turned into an exitCode.
func runScale(cmd *cobra.Command, args []string, opts Options, out io.Writer) error {
	if opts.ListModes {
		PrintModes(out)
		return nil
	}

	if missingArguments(args) {
		if err := cmd.Help(); err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, missingArgumentsMessage)
		return nil
	}
	key, mode, outputFile := args[0], args[1], args[2]

	if !IsSupportedMode(mode) {
		fmt.Fprintf(out, "Error: '%s' is not a supported mode.\n", mode)
		fmt.Fprintln(out, "Use --list-modes to see available modes.")
		return exitCode(1)
	}

	logger := NewLogger(opts.Verbose || os.Getenv(DebugEnvironmentKey) != "")
	defer logger.Sync()

	if err := generate(cmd.Context(), key, mode, outputFile, opts, out, logger); err != nil {
		logger.Debug("run failed", zap.Error(err))
		fmt.Fprintf(out, "Error: %v\n", err)
		return exitCode(1)
	}
	return nil
}

// missingArguments reports whether any of key, mode or output_file is absent
// or empty
func missingArguments(args []string) bool {
	if len(args) < 3 {
		return true
	}
	for _, arg := range args[:3] {
		if arg == "" {
			return true
		}
	}
	return false
}

// generate builds the scale, prints it, writes the MIDI file and runs the
// optional preview and verification steps
func generate(ctx context.Context, key, mode, outputFile string, opts Options, out io.Writer, logger *zap.Logger) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	scale, err := CreateScaleFrom(key, mode, opts.Octaves, opts.StartOctave)
	if err != nil {
		return err
	}
	logger.Debug("scale created",
		zap.String("key", key),
		zap.String("mode", string(scale.Mode)),
		zap.Int("octaves", opts.Octaves),
		zap.Strings("notes", scale.PitchNames()))

	PrintScaleNotes(out, scale, key, mode)

	processor := NewMIDIProcessor(logger)
	if err := processor.WriteMIDIFile(scale, outputFile, opts); err != nil {
		return err
	}
	fmt.Fprintf(out, "MIDI file written to: %s\n", outputFile)

	if opts.Verify {
		parsed, err := processor.LoadMIDI(outputFile)
		if err != nil {
			return err
		}
		DescribeMIDI(out, parsed)
		if err := processor.VerifyScale(parsed, scale); err != nil {
			return errors.Wrap(err, "verification failed")
		}
		fmt.Fprintf(out, "Verified %d notes in %s\n", len(scale.Notes), outputFile)
	}

	if opts.WAVPath != "" || opts.Play {
		renderer := NewAudioRenderer(logger)
		if opts.WAVPath != "" {
			if err := renderer.RenderWAV(scale, opts.Tempo, opts.WAVPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "WAV file written to: %s\n", opts.WAVPath)
		}
		if opts.Play {
			if err := renderer.Play(ctx, scale, opts.Tempo); err != nil {
				return err
			}
		}
	}

	return nil
}

// run executes the command line and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}

	// flag parsing and argument count errors
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintln(stderr, cmd.UsageString())
	return 2
}
