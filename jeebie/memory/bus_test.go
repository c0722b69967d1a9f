package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

// register is a single-byte device used to observe MapIO routing.
type register struct {
	value  byte
	reads  int
	writes int
}

func (r *register) Read(uint16) byte {
	r.reads++
	return r.value
}

func (r *register) Write(_ uint16, value byte) {
	r.writes++
	r.value = value
}

// recorder logs every hook call and optionally rewrites writes.
type recorder struct {
	name    string
	log     *[]string
	rewrite func(byte) byte
}

func (r *recorder) OnRead(_ uint16, value byte) byte {
	*r.log = append(*r.log, r.name+":read")
	return value
}

func (r *recorder) OnWrite(_ uint16, value byte) byte {
	*r.log = append(*r.log, r.name+":write")
	if r.rewrite != nil {
		return r.rewrite(value)
	}
	return value
}

func newTestBus() *Bus {
	b := New()
	b.MapIO(addr.IE, addr.IE, &register{})
	return b
}

func TestReadWriteRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		address uint16
	}{
		{"vram", 0x8000},
		{"vram end", addr.VRAMEnd},
		{"external ram", 0xA123},
		{"work ram", 0xC000},
		{"work ram end", addr.WRAMEnd},
		{"oam", 0xFE00},
		{"oam end", addr.OAMEnd},
		{"io storage", 0xFF4C},
		{"hram", addr.HRAMStart},
		{"hram end", addr.HRAMEnd},
		{"interrupt enable", addr.IE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBus()
			b.Write(tt.address, 0x5A)
			assert.Equal(t, byte(0x5A), b.Read(tt.address))
		})
	}
}

func TestROMIsReadOnly(t *testing.T) {
	b := newTestBus()
	require.NoError(t, b.LoadROM([]byte{0x00, 0xC3, 0x50, 0x01}))

	var log []string
	b.Attach(&recorder{name: "a", log: &log})

	b.Write(0x0001, 0xFF)
	b.Write(addr.ROMEnd, 0xFF)

	assert.Equal(t, byte(0xC3), b.Peek(0x0001))
	assert.Equal(t, byte(0x00), b.Peek(addr.ROMEnd))
	assert.Empty(t, log, "interceptors must not see writes to read-only regions")
}

func TestLoadROM(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		b := New()
		err := b.LoadROM(make([]byte, 0x8001))
		assert.True(t, errors.Is(err, ErrROMTooLarge))
	})

	t.Run("reload clears previous image", func(t *testing.T) {
		b := New()
		require.NoError(t, b.LoadROM([]byte{1, 2, 3, 4}))
		require.NoError(t, b.LoadROM([]byte{9}))

		assert.Equal(t, byte(9), b.Read(0))
		assert.Equal(t, byte(0), b.Read(1))
	})

	t.Run("full 32 KiB", func(t *testing.T) {
		b := New()
		data := make([]byte, 0x8000)
		data[0x7FFF] = 0xAA
		require.NoError(t, b.LoadROM(data))
		assert.Equal(t, byte(0xAA), b.Read(addr.ROMEnd))
	})
}

func TestEchoRAM(t *testing.T) {
	b := newTestBus()

	b.Write(0xC010, 0x11)
	assert.Equal(t, byte(0x11), b.Read(0xE010))

	b.Write(addr.EchoEnd, 0x22)
	assert.Equal(t, byte(0x22), b.Read(0xDDFF))
}

func TestUnusableArea(t *testing.T) {
	b := newTestBus()

	b.Write(addr.UnusableStart, 0x12)
	b.Write(addr.UnusableEnd, 0x34)

	assert.Equal(t, OpenBus, b.Read(addr.UnusableStart))
	assert.Equal(t, OpenBus, b.Read(addr.UnusableEnd))
}

func TestMapIO(t *testing.T) {
	b := newTestBus()
	dev := &register{value: 0x77}
	b.MapIO(addr.DIV, addr.TAC, dev)

	assert.Equal(t, byte(0x77), b.Read(addr.TIMA))
	b.Write(addr.TAC, 0x05)

	assert.Equal(t, 1, dev.reads)
	assert.Equal(t, 1, dev.writes)
	assert.Equal(t, byte(0x05), b.Read(addr.DIV))

	assert.Panics(t, func() { b.MapIO(addr.HRAMStart, addr.HRAMStart, dev) })
	assert.Panics(t, func() { b.MapIO(0xC000, 0xC000, dev) })
}

func TestUnmappedInterruptEnable(t *testing.T) {
	b := New()

	defer func() {
		r := recover()
		require.NotNil(t, r)

		err, ok := r.(error)
		require.True(t, ok)

		var mappingErr *MappingError
		require.True(t, errors.As(err, &mappingErr))
		assert.Equal(t, addr.IE, mappingErr.Address)
		assert.False(t, mappingErr.Write)
	}()

	b.Read(addr.IE)
}

func TestInterceptorOrder(t *testing.T) {
	b := newTestBus()
	var log []string

	first := &recorder{name: "first", log: &log, rewrite: func(v byte) byte { return v + 1 }}
	second := &recorder{name: "second", log: &log, rewrite: func(v byte) byte { return v * 2 }}
	b.Attach(first)
	b.Attach(second)

	b.Write(0xC000, 3)
	assert.Equal(t, []string{"first:write", "second:write"}, log)
	assert.Equal(t, byte(8), b.Peek(0xC000), "the last candidate is committed")

	log = log[:0]
	b.Read(0xC000)
	assert.Equal(t, []string{"first:read", "second:read"}, log)

	b.Detach(first)
	log = log[:0]
	b.Write(0xC000, 3)
	assert.Equal(t, []string{"second:write"}, log)
	assert.Equal(t, byte(6), b.Peek(0xC000))
}

type flipReads struct{ PassThrough }

func (flipReads) OnRead(_ uint16, value byte) byte { return ^value }

func TestReadTransform(t *testing.T) {
	b := newTestBus()
	b.Write(0xC000, 0x0F)
	b.Attach(flipReads{})

	assert.Equal(t, byte(0xF0), b.Read(0xC000))
	assert.Equal(t, byte(0x0F), b.Peek(0xC000))
}

func TestPassThroughIsTransparent(t *testing.T) {
	plain := newTestBus()
	observed := newTestBus()
	observed.Attach(PassThrough{})
	observed.Attach(&PassThrough{})

	addresses := []uint16{0x8000, 0x9FFF, 0xA000, 0xC000, 0xE000, 0xFE00, 0xFEA0, 0xFF00, 0xFF80, 0xFFFE, 0xFFFF}
	for i, a := range addresses {
		value := byte(i*37 + 1)
		plain.Write(a, value)
		observed.Write(a, value)
	}

	for _, a := range addresses {
		assert.Equal(t, plain.Read(a), observed.Read(a), "address 0x%04X", a)
	}
}

func TestOAMDMA(t *testing.T) {
	b := newTestBus()
	for i := range uint16(0xA0) {
		b.Write(0xC100+i, byte(i))
	}

	var log []string
	b.Attach(&recorder{name: "dma", log: &log})
	b.Write(addr.DMA, 0xC1)

	for i := range uint16(0xA0) {
		assert.Equal(t, byte(i), b.Peek(addr.OAMStart+i))
	}
	assert.Equal(t, byte(0xC1), b.Peek(addr.DMA))
	assert.Equal(t, []string{"dma:write"}, log, "DMA copy does not go through interceptors")
}

type sliceHolder struct {
	PassThrough
	seen []uint16
}

func TestDetachNonComparable(t *testing.T) {
	b := newTestBus()
	var log []string
	rec := &recorder{name: "rec", log: &log, rewrite: func(v byte) byte { return v }}
	b.Attach(sliceHolder{})
	b.Attach(rec)

	t.Run("value with a slice field is skipped", func(t *testing.T) {
		assert.NotPanics(t, func() { b.Detach(sliceHolder{}) })
		assert.NotPanics(t, func() { b.Detach(&recorder{}) })
	})

	t.Run("pointer is still found", func(t *testing.T) {
		b.Detach(rec)
		b.Write(0xC000, 1)
		assert.Empty(t, log)
		assert.Equal(t, byte(1), b.Read(0xC000))
	})
}
