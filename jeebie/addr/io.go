// Package addr names the DMG memory map: region bounds and the I/O registers
// the core maps onto devices.
package addr

// Region bounds, both ends inclusive.
const (
	ROMStart uint16 = 0x0000
	ROMEnd   uint16 = 0x7FFF

	VRAMStart uint16 = 0x8000
	VRAMEnd   uint16 = 0x9FFF

	ExtRAMStart uint16 = 0xA000
	ExtRAMEnd   uint16 = 0xBFFF

	WRAMStart uint16 = 0xC000
	WRAMEnd   uint16 = 0xDFFF

	// EchoStart..EchoEnd mirrors WRAMStart..0xDDFF.
	EchoStart uint16 = 0xE000
	EchoEnd   uint16 = 0xFDFF

	// OAM holds 40 objects of 4 bytes.
	OAMStart uint16 = 0xFE00
	OAMEnd   uint16 = 0xFE9F

	UnusableStart uint16 = 0xFEA0
	UnusableEnd   uint16 = 0xFEFF

	IOStart uint16 = 0xFF00
	IOEnd   uint16 = 0xFF7F

	HRAMStart uint16 = 0xFF80
	HRAMEnd   uint16 = 0xFFFE
)

// LCD registers
const (
	LCDC uint16 = 0xFF40
	STAT uint16 = 0xFF41
	SCY  uint16 = 0xFF42
	SCX  uint16 = 0xFF43
	LY   uint16 = 0xFF44 // read-only
	LYC  uint16 = 0xFF45
	// DMA starts a 160 byte copy from value<<8 into OAM.
	DMA  uint16 = 0xFF46
	BGP  uint16 = 0xFF47
	OBP0 uint16 = 0xFF48
	OBP1 uint16 = 0xFF49
	WY   uint16 = 0xFF4A
	WX   uint16 = 0xFF4B
)

// Tile data and tile maps.
const (
	// TileData0 is where unsigned tile numbers 0-255 start, and where objects
	// always fetch from.
	TileData0 uint16 = 0x8000
	// TileData1 holds tiles -128..-1 in signed mode.
	TileData1 uint16 = 0x8800
	// TileData2 is tile 0 in signed mode.
	TileData2 uint16 = 0x9000

	TileMap0 uint16 = 0x9800
	TileMap1 uint16 = 0x9C00
)

// Interrupt flag and enable registers.
const (
	IF uint16 = 0xFF0F
	IE uint16 = 0xFFFF
)

// P1 selects and reads the joypad matrix.
const P1 uint16 = 0xFF00

// Serial port. A write of 1 to SC bit 7 starts shifting SB out; bit 0 picks
// the internal clock. The bit drops back to 0 when the byte is done.
const (
	SB uint16 = 0xFF01
	SC uint16 = 0xFF02
)

// Timer registers. DIV is the high byte of the 16-bit divider; TIMA counts at
// the rate TAC selects and reloads from TMA on overflow.
const (
	DIV  uint16 = 0xFF04
	TIMA uint16 = 0xFF05
	TMA  uint16 = 0xFF06
	TAC  uint16 = 0xFF07
)
