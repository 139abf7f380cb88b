package main

import (
	"encoding/binary"
	"os"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Default tempo of a MIDI file without a tempo event: 120 BPM
const defaultMicrosPerBeat = 500000

// ParsedMIDI is the decoded content of a Standard MIDI File
type ParsedMIDI struct {
	Format       int
	NumTracks    int
	TicksPerBeat int
	Tempo        float64 // first tempo in BPM
	Tracks       []MIDITrack
}

// AllNotes returns the notes of all tracks ordered by start time
func (p *ParsedMIDI) AllNotes() []MIDINote {
	var notes []MIDINote
	for _, t := range p.Tracks {
		notes = append(notes, t.Notes...)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartTime < notes[j].StartTime
	})
	return notes
}

// SimpleMIDIParser provides basic MIDI parsing functionality
type SimpleMIDIParser struct {
	data          []byte
	position      int
	ticksPerBeat  int
	microsPerBeat int // tempo in effect
	firstTempo    int // first tempo seen, 0 until then
	logger        *zap.Logger
}

// NewSimpleMIDIParser creates a new simple MIDI parser
func NewSimpleMIDIParser(logger *zap.Logger) *SimpleMIDIParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimpleMIDIParser{
		microsPerBeat: defaultMicrosPerBeat,
		logger:        logger,
	}
}

// ParseFile parses a MIDI file and extracts note events
func (p *SimpleMIDIParser) ParseFile(filepath string) (*ParsedMIDI, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return p.Parse(data)
}

// Parse parses SMF bytes and extracts note events
func (p *SimpleMIDIParser) Parse(data []byte) (*ParsedMIDI, error) {
	p.data = data
	p.position = 0
	p.microsPerBeat = defaultMicrosPerBeat
	p.firstTempo = 0

	format, numTracks, err := p.parseHeader()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse header")
	}

	out := &ParsedMIDI{
		Format:       format,
		NumTracks:    numTracks,
		TicksPerBeat: p.ticksPerBeat,
	}

	for i := 0; i < numTracks && p.position < len(p.data); i++ {
		track, err := p.parseTrack()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse track %d", i)
		}
		out.Tracks = append(out.Tracks, track)
	}

	if len(out.Tracks) != numTracks {
		return nil, errors.Errorf("header announces %d tracks, found %d", numTracks, len(out.Tracks))
	}

	first := p.firstTempo
	if first == 0 {
		first = defaultMicrosPerBeat
	}
	out.Tempo = 60000000.0 / float64(first)
	return out, nil
}

// parseHeader parses the MIDI file header
func (p *SimpleMIDIParser) parseHeader() (int, int, error) {
	if len(p.data) < 14 {
		return 0, 0, errors.New("file too short for header")
	}

	// Check MThd signature
	if string(p.data[0:4]) != "MThd" {
		return 0, 0, errors.New("invalid MIDI header signature")
	}

	headerLength := int(binary.BigEndian.Uint32(p.data[4:]))
	if headerLength < 6 || 8+headerLength > len(p.data) {
		return 0, 0, errors.Errorf("invalid header length %d", headerLength)
	}
	p.position = 8

	format := binary.BigEndian.Uint16(p.data[p.position:])
	numTracks := binary.BigEndian.Uint16(p.data[p.position+2:])
	division := binary.BigEndian.Uint16(p.data[p.position+4:])

	if division == 0 {
		return 0, 0, errors.New("division of zero ticks per beat")
	}
	if division&0x8000 != 0 {
		return 0, 0, errors.Errorf("SMPTE division %#04x is not supported", division)
	}

	p.position += headerLength
	p.ticksPerBeat = int(division)

	p.logger.Debug("MIDI header",
		zap.Uint16("format", format),
		zap.Uint16("tracks", numTracks),
		zap.Int("ticksPerBeat", p.ticksPerBeat))

	return int(format), int(numTracks), nil
}

// parseTrack parses a single MIDI track
func (p *SimpleMIDIParser) parseTrack() (MIDITrack, error) {
	var track MIDITrack

	if p.position+8 > len(p.data) {
		return track, errors.New("not enough data for track header")
	}

	// Check MTrk signature
	if string(p.data[p.position:p.position+4]) != "MTrk" {
		return track, errors.New("invalid track header signature")
	}

	trackLength := binary.BigEndian.Uint32(p.data[p.position+4:])
	trackStart := p.position + 8
	trackEnd := trackStart + int(trackLength)
	if trackEnd > len(p.data) {
		return track, errors.Errorf("track length %d exceeds file size", trackLength)
	}

	p.position = trackStart

	// each track starts from the opening tempo
	p.microsPerBeat = defaultMicrosPerBeat
	if p.firstTempo != 0 {
		p.microsPerBeat = p.firstTempo
	}

	activeNotes := make(map[int]*MIDINote) // pitch -> note
	currentTime := 0.0
	runningStatus := byte(0)

	for p.position < trackEnd {
		deltaTime, err := p.readVariableLength()
		if err != nil {
			return track, err
		}
		currentTime += p.ticksToSeconds(deltaTime)

		if p.position >= trackEnd {
			return track, errors.New("track ends after delta time")
		}

		eventByte := p.data[p.position]

		switch {
		case eventByte == 0xFF: // Meta event
			p.position++
			if p.position >= trackEnd {
				return track, errors.New("truncated meta event")
			}
			metaType := p.data[p.position]
			p.position++

			length, err := p.readVariableLength()
			if err != nil || p.position+length > trackEnd {
				return track, errors.New("truncated meta event data")
			}
			payload := p.data[p.position : p.position+length]
			p.position += length

			switch metaType {
			case 0x03: // Track name
				track.Name = string(payload)
			case 0x51: // Tempo
				if length != 3 {
					break
				}
				micros := int(payload[0])<<16 | int(payload[1])<<8 | int(payload[2])
				if micros == 0 {
					return track, errors.New("tempo of zero microseconds per beat")
				}
				p.microsPerBeat = micros
				if p.firstTempo == 0 {
					p.firstTempo = micros
				}
				p.logger.Debug("tempo", zap.Int("microsPerBeat", micros), zap.Float64("at", currentTime))
			}

		case eventByte == 0xF0 || eventByte == 0xF7: // SysEx
			p.position++
			length, err := p.readVariableLength()
			if err != nil || p.position+length > trackEnd {
				return track, errors.New("truncated sysex event")
			}
			p.position += length

		default:
			status := runningStatus
			if eventByte >= 0x80 {
				status = eventByte
				runningStatus = status
				p.position++
			} else if runningStatus == 0 {
				return track, errors.Errorf("data byte %#02x without running status", eventByte)
			}

			dataLen := channelDataLength(status)
			if p.position+dataLen > trackEnd {
				return track, errors.New("truncated channel event")
			}
			data := p.data[p.position : p.position+dataLen]
			p.position += dataLen

			switch status & 0xF0 {
			case 0x90: // Note On
				pitch := int(data[0])
				velocity := int(data[1])
				if velocity > 0 {
					activeNotes[pitch] = &MIDINote{
						Pitch:     pitch,
						Velocity:  velocity,
						StartTime: currentTime,
					}
					continue
				}
				// Note on with velocity 0 = note off
				track.Notes = p.closeNote(track.Notes, activeNotes, pitch, currentTime)

			case 0x80: // Note Off
				track.Notes = p.closeNote(track.Notes, activeNotes, int(data[0]), currentTime)
			}
		}
	}

	// Notes without a note off run until the end of the track
	for _, activeNote := range activeNotes {
		activeNote.Duration = currentTime - activeNote.StartTime
		track.Notes = append(track.Notes, *activeNote)
	}

	sort.SliceStable(track.Notes, func(i, j int) bool {
		return track.Notes[i].StartTime < track.Notes[j].StartTime
	})

	p.position = trackEnd
	p.logger.Debug("parsed track", zap.String("name", track.Name), zap.Int("notes", len(track.Notes)))
	return track, nil
}

func (p *SimpleMIDIParser) closeNote(notes []MIDINote, active map[int]*MIDINote, pitch int, now float64) []MIDINote {
	activeNote, exists := active[pitch]
	if !exists {
		return notes
	}
	activeNote.Duration = now - activeNote.StartTime
	delete(active, pitch)
	return append(notes, *activeNote)
}

// channelDataLength returns the number of data bytes following a channel status byte
func channelDataLength(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}

// readVariableLength reads a MIDI variable-length quantity
func (p *SimpleMIDIParser) readVariableLength() (int, error) {
	value := 0
	for i := 0; i < 4; i++ {
		if p.position >= len(p.data) {
			return 0, errors.New("unexpected end of data")
		}

		b := p.data[p.position]
		p.position++

		value = (value << 7) | int(b&0x7F)

		if (b & 0x80) == 0 {
			return value, nil
		}
	}
	return 0, errors.New("variable-length quantity longer than 4 bytes")
}

// ticksToSeconds converts MIDI ticks to seconds
func (p *SimpleMIDIParser) ticksToSeconds(ticks int) float64 {
	secondsPerTick := float64(p.microsPerBeat) / (float64(p.ticksPerBeat) * 1000000.0)
	return float64(ticks) * secondsPerTick
}
