// Package loader parses NDS ROM headers and raw GBA images into the
// segments that direct boot loads into memory.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// ndsHeaderSize is the portion of the cartridge header direct boot needs.
const ndsHeaderSize = 0x170

// Segment is one CPU's code image and where it lives.
type Segment struct {
	// Entry is the address execution starts at.
	Entry uint32

	// LoadAddr is the address the data is loaded to.
	LoadAddr uint32

	// Data is the code image read from the ROM.
	Data []byte
}

// Program is a parsed ROM ready to be placed in memory.
type Program struct {
	// Title is the 12-character game title from the header.
	Title string

	// Gba is true for a raw GBA image; only Arm7 is populated then.
	Gba bool

	// Arm9 and Arm7 are the per-CPU code segments.
	Arm9 Segment
	Arm7 Segment

	// Header is the raw cartridge header, needed at 0x27FFE00 for NDS
	// direct boot.
	Header []byte
}

// Load parses a ROM file, picking the format from the file extension:
// ".gba" loads as a raw GBA image, anything else as an NDS cartridge.
func Load(path string) (*Program, error) {
	if strings.HasSuffix(strings.ToLower(path), ".gba") {
		return LoadGba(path)
	}
	return LoadNds(path)
}

// LoadNds parses an NDS cartridge image.
func LoadNds(path string) (*Program, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}
	if len(rom) < ndsHeaderSize {
		return nil, fmt.Errorf("ROM too small for an NDS header: %d bytes", len(rom))
	}

	arm9, err := readSegment(rom, 0x20)
	if err != nil {
		return nil, fmt.Errorf("ARM9 segment: %w", err)
	}
	arm7, err := readSegment(rom, 0x30)
	if err != nil {
		return nil, fmt.Errorf("ARM7 segment: %w", err)
	}

	return &Program{
		Title:  strings.TrimRight(string(rom[0:12]), "\x00"),
		Arm9:   arm9,
		Arm7:   arm7,
		Header: rom[:ndsHeaderSize],
	}, nil
}

// readSegment reads one CPU's offset/entry/address/size header block.
func readSegment(rom []byte, base int) (Segment, error) {
	offset := binary.LittleEndian.Uint32(rom[base:])
	entry := binary.LittleEndian.Uint32(rom[base+4:])
	load := binary.LittleEndian.Uint32(rom[base+8:])
	size := binary.LittleEndian.Uint32(rom[base+12:])

	if uint64(offset)+uint64(size) > uint64(len(rom)) {
		return Segment{}, fmt.Errorf("code at 0x%X+0x%X runs past the ROM", offset, size)
	}

	return Segment{
		Entry:    entry,
		LoadAddr: load,
		Data:     rom[offset : offset+size],
	}, nil
}

// LoadGba reads a raw GBA image. The whole file maps at the cartridge
// base and the ARM7 enters at its first word.
func LoadGba(path string) (*Program, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	title := ""
	if len(rom) >= 0xAC {
		title = strings.TrimRight(string(rom[0xA0:0xAC]), "\x00")
	}

	return &Program{
		Title: title,
		Gba:   true,
		Arm7: Segment{
			Entry:    0x08000000,
			LoadAddr: 0x08000000,
			Data:     rom,
		},
	}, nil
}
