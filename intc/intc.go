// Package intc drives the RTL819x SoC interrupt controller: 32 device lines
// behind one mask and one status register, cascaded into a single CPU line.
package intc

import (
	"errors"
	"fmt"
	"math/bits"

	"rtl819x/core"
	"rtl819x/irq"
	"rtl819x/mmio"
)

const (
	IRQCount = 32

	RegGIMR = 0x00 // Interrupt mask
	RegGISR = 0x04 // Interrupt status
	RegIRR0 = 0x08 // Interrupt routing, lines 0..7
	RegIRR1 = 0x0c // Interrupt routing, lines 8..15
	RegIRR2 = 0x10 // Interrupt routing, lines 16..23
	RegIRR3 = 0x14 // Interrupt routing, lines 24..31

	WindowSize = 0x18

	routeFieldBits = 4
	routeFieldMax  = 1<<routeFieldBits - 1
)

var (
	ErrNoParent  = errors.New("intc: no cascade interrupt")
	ErrNoMMIO    = errors.New("intc: no register window")
	ErrBadParent = errors.New("intc: cascade interrupt does not fit a routing field")
)

const component = "intc"

// Controller is the SoC interrupt controller context
type Controller struct {
	regs   *mmio.Window
	table  *irq.Table
	domain *irq.Domain
	parent uint
}

// RoutingWord returns the IRR value sending all eight lines of a routing
// register to parent
func RoutingWord(parent uint) uint32 {
	var v uint32
	for shift := 0; shift < 32; shift += routeFieldBits {
		v |= uint32(parent) << shift
	}
	return v
}

// Init brings the controller up below the cascade interrupt parent: every
// line masked, every line routed to parent, and the demultiplexer installed
// as parent's chained handler.
func Init(regs *mmio.Window, table *irq.Table, parent uint) (*Controller, error) {
	if parent == 0 {
		return nil, ErrNoParent
	}
	if regs == nil {
		return nil, ErrNoMMIO
	}
	if regs.Size() < WindowSize {
		return nil, fmt.Errorf("%w: window %#x bytes, need %#x", ErrNoMMIO, regs.Size(), WindowSize)
	}
	if parent > routeFieldMax {
		return nil, fmt.Errorf("%w: %d", ErrBadParent, parent)
	}

	c := &Controller{regs: regs, table: table, parent: parent}

	domain, err := table.AddLinear("rtl819x-soc-intc", IRQCount, irq.MapFunc(c.mapLine), c)
	if err != nil {
		return nil, fmt.Errorf("intc: failed to add IRQ domain: %w", err)
	}
	c.domain = domain

	routing := RoutingWord(parent)
	regs.Write(RegGIMR, 0)
	regs.Write(RegIRR0, routing)
	regs.Write(RegIRR1, routing)
	regs.Write(RegIRR2, routing)
	regs.Write(RegIRR3, routing)

	if err := table.SetChainedHandler(parent, c.handleCascade, domain); err != nil {
		return nil, fmt.Errorf("intc: failed to chain to IRQ%d: %w", parent, err)
	}

	core.Info(component, "RTL819x INTC started (cascaded to IRQ"+core.Itoa(int(parent))+")")
	return c, nil
}

func (c *Controller) mapLine(d *irq.Domain, virq, hw uint) error {
	if err := c.table.SetChipAndHandler(virq, c, irq.HandleLevel); err != nil {
		return err
	}
	return c.table.SetChipData(virq, c)
}

// Domain returns the controller's interrupt domain
func (c *Controller) Domain() *irq.Domain { return c.domain }

// Parent returns the cascade interrupt the controller reports through
func (c *Controller) Parent() uint { return c.parent }

// handleCascade demultiplexes one cascade firing. Status and mask are
// sampled once and only the lowest pending line is dispatched; anything
// still pending keeps the level cascade line asserted and comes back on the
// next entry.
func (c *Controller) handleCascade(desc *irq.Desc) {
	domain := desc.HandlerData().(*irq.Domain)

	pending := c.regs.Read(RegGISR) & c.regs.Read(RegGIMR)
	if pending == 0 {
		core.RecordEvent(core.EvtSpurious, uint16(c.parent), 0)
		c.table.Spurious()
		return
	}

	hw := uint(bits.TrailingZeros32(pending))
	virq, ok := domain.FindMapping(hw)
	if !ok {
		// A line was unmasked without ever being mapped
		core.Warn(component, "unmapped line "+core.Itoa(int(hw))+" pending")
		c.table.Spurious()
		return
	}

	core.RecordEvent(core.EvtCascade, uint16(virq), pending)
	c.table.Handle(virq)
}

// Name implements irq.Chip
func (c *Controller) Name() string { return "rtl819x-soc-intc" }

// Mask implements irq.Chip
func (c *Controller) Mask(d *irq.Data) {
	c.regs.Clear(RegGIMR, 1<<d.HW)
}

// Unmask implements irq.Chip
func (c *Controller) Unmask(d *irq.Data) {
	c.regs.Set(RegGIMR, 1<<d.HW)
}

func (c *Controller) Ack(d *irq.Data)     { c.Mask(d) }
func (c *Controller) MaskAck(d *irq.Data) { c.Mask(d) }
func (c *Controller) Disable(d *irq.Data) { c.Mask(d) }
func (c *Controller) EOI(d *irq.Data)     { c.Unmask(d) }
func (c *Controller) Enable(d *irq.Data)  { c.Unmask(d) }
