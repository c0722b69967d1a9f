package cpu

import "github.com/valerio/jeebie-core/jeebie/bit"

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &= uint8(flag ^ 0xFF)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}

	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}

	c.setFlag(flag)
}

// setFlags overwrites all four flags at once.
func (c *CPU) setFlags(z, n, h, carry bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, z)
	c.setFlagToCondition(subFlag, n)
	c.setFlagToCondition(halfCarryFlag, h)
	c.setFlagToCondition(carryFlag, carry)
}

// condition evaluates the cc field of conditional jumps: NZ, Z, NC, C.
func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

var conditionNames = [4]string{"NZ", "Z", "NC", "C"}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++

	return bit.Combine(high, low)
}

func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0)
	c.resetFlag(subFlag)
}

func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0xF)
	c.setFlag(subFlag)
}

func (c *CPU) rlc(r *uint8) {
	value := *r
	result := value<<1 | value>>7
	c.setFlags(result == 0, false, false, value > 0x7F)
	*r = result
}

func (c *CPU) rl(r *uint8) {
	value := *r
	result := value<<1 | c.flagToBit(carryFlag)
	c.setFlags(result == 0, false, false, value > 0x7F)
	*r = result
}

func (c *CPU) rrc(r *uint8) {
	value := *r
	result := value>>1 | value<<7
	c.setFlags(result == 0, false, false, value&1 == 1)
	*r = result
}

func (c *CPU) rr(r *uint8) {
	value := *r
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setFlags(result == 0, false, false, value&1 == 1)
	*r = result
}

func (c *CPU) sla(r *uint8) {
	value := *r
	result := value << 1
	c.setFlags(result == 0, false, false, value > 0x7F)
	*r = result
}

// sra shifts right keeping the sign bit.
func (c *CPU) sra(r *uint8) {
	value := *r
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&1 == 1)
	*r = result
}

func (c *CPU) srl(r *uint8) {
	value := *r
	result := value >> 1
	c.setFlags(result == 0, false, false, value&1 == 1)
	*r = result
}

func (c *CPU) swap(r *uint8) {
	result := *r<<4 | *r>>4
	c.setFlags(result == 0, false, false, false)
	*r = result
}

// bit tests a bit of value, Z is set when the bit is 0. Carry is preserved.
func (c *CPU) bit(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) set(index uint8, r *uint8) {
	*r = bit.Set(index, *r)
}

func (c *CPU) res(index uint8, r *uint8) {
	*r = bit.Clear(index, *r)
}

// addToA sets the result of adding an 8 bit value to A, while setting all relevant flags.
func (c *CPU) addToA(value uint8) {
	a := c.a
	result := a + value

	carry := uint16(a)+uint16(value) > 0xFF
	halfCarry := (a&0xF)+(value&0xF) > 0xF

	c.setFlags(result == 0, false, halfCarry, carry)
	c.a = result
}

// adc adds value and the carry flag to A.
func (c *CPU) adc(value uint8) {
	a := c.a
	carryIn := c.flagToBit(carryFlag)
	result := a + value + carryIn

	carry := uint16(a)+uint16(value)+uint16(carryIn) > 0xFF
	halfCarry := (a&0xF)+(value&0xF)+carryIn > 0xF

	c.setFlags(result == 0, false, halfCarry, carry)
	c.a = result
}

// addToHL sets the result of adding a 16 bit value to HL. Z is preserved.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := hl + value

	carry := uint32(hl)+uint32(value) > 0xFFFF
	halfCarry := (hl&0xFFF)+(value&0xFFF) > 0xFFF

	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(halfCarryFlag, halfCarry)

	c.setHL(result)
}

// addSP returns SP+offset. Flags are computed on the low byte as an unsigned add.
func (c *CPU) addSP(offset int8) uint16 {
	sp := c.sp
	n := uint16(uint8(offset))

	halfCarry := (sp&0xF)+(n&0xF) > 0xF
	carry := (sp&0xFF)+n > 0xFF

	c.setFlags(false, false, halfCarry, carry)
	return bit.AddSigned(sp, offset)
}

// sub will subtract the value from register A and set all relevant flags.
func (c *CPU) sub(value uint8) {
	c.a = c.subtract(value, 0)
}

// sbc subtracts value and the carry flag from A.
func (c *CPU) sbc(value uint8) {
	c.a = c.subtract(value, c.flagToBit(carryFlag))
}

// cp compares A with value, the result is discarded.
func (c *CPU) cp(value uint8) {
	c.subtract(value, 0)
}

func (c *CPU) subtract(value, carryIn uint8) uint8 {
	a := c.a
	result := a - value - carryIn

	carry := int(a)-int(value)-int(carryIn) < 0
	halfCarry := int(a&0xF)-int(value&0xF)-int(carryIn) < 0

	c.setFlags(result == 0, true, halfCarry, carry)
	return result
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

// daa adjusts A to a valid BCD value after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	var adjust uint8
	carry := c.isSetFlag(carryFlag)

	if !c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) || a&0xF > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	} else {
		if c.isSetFlag(halfCarryFlag) {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	}

	c.setFlags(a == 0, c.isSetFlag(subFlag), false, carry)
	c.a = a
}

// alu applies one of the 8 accumulator operations encoded in opcode bits 3-5.
func (c *CPU) alu(op, value uint8) {
	switch op {
	case 0:
		c.addToA(value)
	case 1:
		c.adc(value)
	case 2:
		c.sub(value)
	case 3:
		c.sbc(value)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.cp(value)
	}
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

// rotate applies one of the 8 CB shift/rotate operations encoded in bits 3-5.
func (c *CPU) rotate(op uint8, r *uint8) {
	switch op {
	case 0:
		c.rlc(r)
	case 1:
		c.rrc(r)
	case 2:
		c.rl(r)
	case 3:
		c.rr(r)
	case 4:
		c.sla(r)
	case 5:
		c.sra(r)
	case 6:
		c.swap(r)
	default:
		c.srl(r)
	}
}

var rotateNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
