package sim

// INTC register offsets, as the hardware decodes them
const (
	intcGIMR = 0x00
	intcGISR = 0x04
	intcIRR0 = 0x08
	intcIRR3 = 0x14

	INTCSize = 0x18
)

// INTC models the SoC interrupt controller. Inputs are level sensitive;
// GISR shows the raw input levels and GIMR gates them onto the CPU lines
// selected by the routing registers.
type INTC struct {
	mask  uint32
	level uint32
	irr   [4]uint32
}

// Read32 implements mmio.Device
func (c *INTC) Read32(off uintptr) uint32 {
	switch {
	case off == intcGIMR:
		return c.mask
	case off == intcGISR:
		return c.level
	case off >= intcIRR0 && off <= intcIRR3:
		return c.irr[(off-intcIRR0)/4]
	}
	return 0
}

// Write32 implements mmio.Device. GISR is read-only; a device clears its
// line by dropping its own request.
func (c *INTC) Write32(off uintptr, val uint32) {
	switch {
	case off == intcGIMR:
		c.mask = val
	case off >= intcIRR0 && off <= intcIRR3:
		c.irr[(off-intcIRR0)/4] = val
	}
}

// SetLine drives input line n
func (c *INTC) SetLine(n uint, asserted bool) {
	if n >= 32 {
		return
	}
	if asserted {
		c.level |= 1 << n
	} else {
		c.level &^= 1 << n
	}
}

// Level returns the raw input levels
func (c *INTC) Level() uint32 { return c.level }

// Mask returns GIMR
func (c *INTC) Mask() uint32 { return c.mask }

// route returns the CPU interrupt number line n is routed to
func (c *INTC) route(n uint) uint32 {
	return c.irr[n/8] >> (4 * (n % 8)) & 0xf
}

// Lines returns the CPU lines currently asserted by enabled inputs, bit n
// for LOPI line n. Routing values below the LOPI base reach no line.
func (c *INTC) Lines() uint8 {
	active := c.level & c.mask
	var lines uint8
	for n := uint(0); n < 32; n++ {
		if active&(1<<n) == 0 {
			continue
		}
		if r := c.route(n); r >= lopiBase {
			lines |= 1 << (r - lopiBase)
		}
	}
	return lines
}
