package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// Set will return the passed byte with the bit at the specified index set to 1.
func Set(index, value uint8) uint8 {
	return value | (1 << index)
}

// Clear will return the passed byte with the bit at the specified index set to 0.
func Clear(index, value uint8) uint8 {
	return value &^ (1 << index)
}

// Value returns 1 if the bit at index is set, 0 otherwise.
func Value(index, value uint8) uint8 {
	return (value >> index) & 1
}

// AddSigned adds a signed 8 bit offset to a 16 bit address, wrapping around.
func AddSigned(base uint16, offset int8) uint16 {
	return uint16(int32(base) + int32(offset))
}
