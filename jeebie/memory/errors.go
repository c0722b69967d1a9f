package memory

import (
	"errors"
	"fmt"
)

// ErrROMTooLarge is returned when a program image does not fit the ROM region.
var ErrROMTooLarge = errors.New("rom image larger than 32 KiB")

// ErrHeaderTooShort is returned when an image is too small to contain a header.
var ErrHeaderTooShort = errors.New("rom image too short for cartridge header")

// MappingError reports an access to an address with no owner.
type MappingError struct {
	Address uint16
	Write   bool
}

func (e *MappingError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("unmapped %s at 0x%04X", op, e.Address)
}
