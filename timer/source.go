package timer

import (
	"rtl819x/clock"
	"rtl819x/mmio"
)

// Counter is a clock source reading one channel's count register.
// The low shift bits of the count are not significant and are dropped.
type Counter struct {
	name   string
	cnt    mmio.Reg
	shift  uint
	rating int
	flags  clock.Flags
}

func (c *Counter) Name() string       { return c.name }
func (c *Counter) Mask() uint64       { return clock.Mask(32 - c.shift) }
func (c *Counter) Rating() int        { return c.rating }
func (c *Counter) Flags() clock.Flags { return c.flags }

// Read returns the corrected count
func (c *Counter) Read() uint64 {
	return uint64(c.cnt.Read() >> c.shift)
}
