package memory

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	titleAddress          = 0x134
	titleLength           = 16
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D
	headerEnd             = 0x150
)

var cartridgeTypes = map[byte]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
}

// Header holds the cartridge metadata found at 0x0134-0x014F.
type Header struct {
	Title          string
	CartridgeType  byte
	ROMSize        byte
	RAMSize        byte
	Version        byte
	HeaderChecksum byte
	ChecksumValid  bool
}

// TypeName returns a readable name for the cartridge type byte.
func (h Header) TypeName() string {
	if name, ok := cartridgeTypes[h.CartridgeType]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", h.CartridgeType)
}

// ParseHeader reads the cartridge header of a ROM image.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerEnd {
		return Header{}, fmt.Errorf("parse header of %d bytes: %w", len(data), ErrHeaderTooShort)
	}

	var checksum byte
	for _, b := range data[titleAddress:headerChecksumAddress] {
		checksum = checksum - b - 1
	}

	return Header{
		Title:          cleanTitle(data[titleAddress : titleAddress+titleLength]),
		CartridgeType:  data[cartridgeTypeAddress],
		ROMSize:        data[romSizeAddress],
		RAMSize:        data[ramSizeAddress],
		Version:        data[versionNumberAddress],
		HeaderChecksum: data[headerChecksumAddress],
		ChecksumValid:  checksum == data[headerChecksumAddress],
	}, nil
}

// cleanTitle stops at the first NUL, replaces non-printable bytes and trims.
func cleanTitle(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		if b == 0 {
			break
		}
		r := rune(b)
		if b > 0x7E || !unicode.IsPrint(r) {
			r = '?'
		}
		sb.WriteRune(r)
	}

	title := strings.TrimSpace(sb.String())
	if title == "" {
		return "(Untitled)"
	}
	return title
}
