package core

// Itoa converts an integer to a string without using the fmt package.
// Driver code runs on the bare chip where fmt is too heavy for the
// interrupt path.
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Add space for negative sign
	if negative {
		digits++
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// Utoa converts an unsigned 64-bit integer to a string
func Utoa(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// Hex formats a 32-bit value as 0x-prefixed, zero-padded, 8 hex digits.
// Register dumps are easier to read when every value has the same width.
func Hex(v uint32) string {
	return "0x" + HexDigits(v, 8)
}

// HexDigits formats the low n nibbles of v, zero-padded, without a prefix
func HexDigits(v uint32, n int) string {
	const hexDigits = "0123456789abcdef"
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	var buf [8]byte
	for i := n - 1; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf[:n])
}
