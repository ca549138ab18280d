// Package lopi drives the Lexra Low-Overhead Prioritized Interrupt lines:
// eight CPU-level interrupt inputs, each with its own vectored entry point,
// enabled through the estatus coprocessor register and reported in ecause.
package lopi

import (
	"errors"
	"fmt"

	"rtl819x/core"
	"rtl819x/irq"
)

const (
	IRQBase  = 8 // First system-wide interrupt number
	IRQCount = 8

	lineShift = 16
	lineMask  = 0x00ff0000 // Line bits in both estatus (enable) and ecause (pending)
)

var (
	ErrNoCoprocessor = errors.New("lopi: no coprocessor access")
	ErrNoVectors     = errors.New("lopi: no vector base")
)

// Coprocessor is access to the Lexra coprocessor 0 extension registers
type Coprocessor interface {
	EStatus() uint32
	SetEStatus(v uint32)
	ECause() uint32
	SetECause(v uint32)
	IntVec() uintptr
	SetIntVec(addr uintptr)

	// Hazard waits until a status change has reached the interrupt logic
	Hazard()
}

func lineBit(hw uint) uint32 {
	return 1 << (lineShift + hw)
}

// Controller owns the eight CPU interrupt lines
type Controller struct {
	cp       Coprocessor
	table    *irq.Table
	domain   *irq.Domain
	dispatch func(irq uint)
}

// Init clears every line's enable and pending bit, registers the legacy
// domain for interrupts IRQBase..IRQBase+7 and points the vector register at
// vectors, the block of per-priority entry stubs.
func Init(cp Coprocessor, table *irq.Table, vectors uintptr) (*Controller, error) {
	if cp == nil {
		return nil, ErrNoCoprocessor
	}
	if vectors == 0 {
		return nil, ErrNoVectors
	}

	c := &Controller{cp: cp, table: table}

	cp.SetEStatus(cp.EStatus() &^ lineMask)
	cp.SetECause(cp.ECause() &^ lineMask)

	domain, err := table.AddLegacy("lexra-lopi-domain", IRQCount, IRQBase, 0, irq.MapFunc(c.mapLine), c)
	if err != nil {
		return nil, fmt.Errorf("lopi: failed to add IRQ domain: %w", err)
	}
	c.domain = domain

	cp.SetIntVec(vectors)
	core.Info("lopi", "LOPI started")

	return c, nil
}

func (c *Controller) mapLine(d *irq.Domain, virq, hw uint) error {
	core.Debug("lopi", "map irq "+core.Itoa(int(virq)))
	return c.table.SetChipAndHandler(virq, c, irq.HandlePerCPU)
}

// Domain returns the controller's interrupt domain
func (c *Controller) Domain() *irq.Domain { return c.domain }

// SetDispatch overrides the default dispatch path. Platforms that need to
// account or trace every CPU interrupt hook in here.
func (c *Controller) SetDispatch(fn func(irq uint)) {
	c.dispatch = fn
}

// Dispatch is entered from the vector stub of a signaled line with its
// system-wide interrupt number
func (c *Controller) Dispatch(virq uint) {
	if c.dispatch != nil {
		c.dispatch(virq)
		return
	}
	c.table.Handle(virq)
}

// Pending returns the lines that are both pending and enabled, bit n for
// line n, as the CPU would see them when deciding to take an interrupt
func (c *Controller) Pending() uint8 {
	return uint8((c.cp.ECause() & c.cp.EStatus() & lineMask) >> lineShift)
}

// Name implements irq.Chip
func (c *Controller) Name() string { return "LOPI" }

// Mask implements irq.Chip
func (c *Controller) Mask(d *irq.Data) {
	c.cp.SetEStatus(c.cp.EStatus() &^ lineBit(d.HW))
	c.cp.Hazard()
}

// Unmask implements irq.Chip
func (c *Controller) Unmask(d *irq.Data) {
	c.cp.SetEStatus(c.cp.EStatus() | lineBit(d.HW))
	c.cp.Hazard()
}

// The hardware has no acknowledge; every other operation is mask or unmask.

func (c *Controller) Ack(d *irq.Data)     { c.Mask(d) }
func (c *Controller) MaskAck(d *irq.Data) { c.Mask(d) }
func (c *Controller) Disable(d *irq.Data) { c.Mask(d) }
func (c *Controller) EOI(d *irq.Data)     { c.Unmask(d) }
func (c *Controller) Enable(d *irq.Data)  { c.Unmask(d) }
