// Package memory implements the DMG address space: the region layout, mapped
// I/O devices and the interceptor chain every CPU access goes through.
package memory

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/valerio/jeebie-core/jeebie/addr"
)

// OpenBus is the value read from addresses nothing drives.
const OpenBus byte = 0xFF

const (
	echoOffset = addr.EchoStart - addr.WRAMStart

	dmaLength = 0xA0
)

type memRegion uint8

const (
	regionUnmapped memRegion = iota
	regionROM
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// Device is a peripheral that owns one or more I/O registers.
type Device interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Bus owns the 64 KiB address space.
type Bus struct {
	memory    []byte
	regionMap [256]memRegion

	// devices indexed by address - 0xFF00, nil means plain register storage
	devices      [0x100]Device
	interceptors []Interceptor
}

// New creates an empty bus, equivalent to a console with no cartridge in.
func New() *Bus {
	b := &Bus{
		memory: make([]byte, 0x10000),
	}
	initRegionMap(b)
	return b
}

func initRegionMap(b *Bus) {
	fill := func(start, end uint16, r memRegion) {
		for page := start >> 8; page <= end>>8; page++ {
			b.regionMap[page] = r
		}
	}

	fill(addr.ROMStart, addr.ROMEnd, regionROM)
	fill(addr.VRAMStart, addr.VRAMEnd, regionVRAM)
	fill(addr.ExtRAMStart, addr.ExtRAMEnd, regionExtRAM)
	fill(addr.WRAMStart, addr.WRAMEnd, regionWRAM)
	fill(addr.EchoStart, addr.EchoEnd, regionEcho)
	// OAM + unusable area share page 0xFE
	fill(addr.OAMStart, addr.UnusableEnd, regionOAM)
	// IO + HRAM + IE share page 0xFF
	fill(addr.IOStart, addr.IE, regionIO)
}

// LoadROM copies a program image at the start of the address space.
// Bytes not covered by the image read as zero.
func (b *Bus) LoadROM(data []byte) error {
	size := int(addr.ROMEnd) + 1
	if len(data) > size {
		return fmt.Errorf("load rom of %d bytes: %w", len(data), ErrROMTooLarge)
	}

	clear(b.memory[:size])
	copy(b.memory, data)
	return nil
}

// MapIO routes every register in [start, end] to the given device.
// Only the I/O window and the interrupt-enable register can be mapped.
func (b *Bus) MapIO(start, end uint16, d Device) {
	for a := uint32(start); a <= uint32(end); a++ {
		address := uint16(a)
		if !mappable(address) {
			panic(fmt.Sprintf("memory: cannot map device at 0x%04X", address))
		}
		b.devices[address-addr.IOStart] = d
	}
}

func mappable(address uint16) bool {
	return (address >= addr.IOStart && address <= addr.IOEnd) || address == addr.IE
}

// Attach appends an interceptor to the chain. Interceptors run in the order
// they were attached.
func (b *Bus) Attach(i Interceptor) {
	b.interceptors = append(b.interceptors, i)
}

// Detach removes the first occurrence of an interceptor from the chain.
// Interceptors are matched by value, so only comparable ones (typically
// pointers) can be detached; others are left in place.
func (b *Bus) Detach(i Interceptor) {
	for idx, attached := range b.interceptors {
		if sameInterceptor(attached, i) {
			b.interceptors = append(b.interceptors[:idx], b.interceptors[idx+1:]...)
			return
		}
	}
}

func sameInterceptor(a, b Interceptor) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Read returns the value at address as seen through every interceptor.
func (b *Bus) Read(address uint16) byte {
	value := b.Peek(address)
	for _, i := range b.interceptors {
		value = i.OnRead(address, value)
	}
	return value
}

// Peek reads the value at address straight from its owner.
// Interceptors are not involved.
func (b *Bus) Peek(address uint16) byte {
	switch b.regionMap[address>>8] {
	case regionROM, regionVRAM, regionExtRAM, regionWRAM:
		return b.memory[address]
	case regionEcho:
		return b.memory[address-echoOffset]
	case regionOAM:
		if address <= addr.OAMEnd {
			return b.memory[address]
		}
		return OpenBus
	case regionIO:
		return b.readIO(address)
	default:
		panic(&MappingError{Address: address})
	}
}

// Write threads value through the interceptors and commits the result.
// Writes to ROM are dropped before any interceptor sees them.
func (b *Bus) Write(address uint16, value byte) {
	if b.regionMap[address>>8] == regionROM {
		slog.Debug("Ignoring write to ROM", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
		return
	}

	for _, i := range b.interceptors {
		value = i.OnWrite(address, value)
	}
	b.commit(address, value)
}

func (b *Bus) commit(address uint16, value byte) {
	switch b.regionMap[address>>8] {
	case regionVRAM, regionExtRAM, regionWRAM:
		b.memory[address] = value
	case regionEcho:
		b.memory[address-echoOffset] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			b.memory[address] = value
		}
	case regionIO:
		b.writeIO(address, value)
	default:
		panic(&MappingError{Address: address, Write: true})
	}
}

func (b *Bus) readIO(address uint16) byte {
	if address >= addr.HRAMStart && address <= addr.HRAMEnd {
		return b.memory[address]
	}
	if d := b.devices[address-addr.IOStart]; d != nil {
		return d.Read(address)
	}
	if address == addr.IE {
		panic(&MappingError{Address: address})
	}
	return b.memory[address]
}

func (b *Bus) writeIO(address uint16, value byte) {
	if address >= addr.HRAMStart && address <= addr.HRAMEnd {
		b.memory[address] = value
		return
	}
	if address == addr.DMA {
		b.memory[address] = value
		b.transferOAM(value)
		return
	}
	if d := b.devices[address-addr.IOStart]; d != nil {
		d.Write(address, value)
		return
	}
	if address == addr.IE {
		panic(&MappingError{Address: address, Write: true})
	}
	b.memory[address] = value
}

// transferOAM copies 160 bytes from page<<8 into the sprite attribute table.
func (b *Bus) transferOAM(page byte) {
	source := uint16(page) << 8
	for i := range uint16(dmaLength) {
		b.memory[addr.OAMStart+i] = b.Peek(source + i)
	}
}
