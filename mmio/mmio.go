// Package mmio provides typed 32-bit register access over memory-mapped
// windows. The same driver code runs against the volatile hardware bus on
// the chip and against Memory in host tests.
package mmio

import (
	"errors"

	"rtl819x/core"
)

var (
	ErrNoBus     = errors.New("mmio: no bus")
	ErrNoMapping = errors.New("mmio: no mapping")
	ErrUnaligned = errors.New("mmio: base not 32-bit aligned")
)

// Bus performs 32-bit accesses at absolute addresses
type Bus interface {
	Read32(addr uintptr) uint32
	Write32(addr uintptr, val uint32)
}

// Window is an exclusively owned register block at a fixed base
type Window struct {
	bus  Bus
	base uintptr
	size uintptr
}

// Map claims size bytes of registers at base on bus
func Map(bus Bus, base, size uintptr) (*Window, error) {
	if bus == nil {
		return nil, ErrNoBus
	}
	if base == 0 || size == 0 {
		return nil, ErrNoMapping
	}
	if base&3 != 0 {
		return nil, ErrUnaligned
	}
	return &Window{bus: bus, base: base, size: size}, nil
}

// Base returns the window's base address
func (w *Window) Base() uintptr { return w.base }

// Size returns the window size in bytes
func (w *Window) Size() uintptr { return w.size }

func (w *Window) addr(off uintptr) uintptr {
	if off+4 > w.size {
		panic("mmio: offset " + core.Hex(uint32(off)) + " outside window")
	}
	return w.base + off
}

// Read reads the register at off
func (w *Window) Read(off uintptr) uint32 {
	return w.bus.Read32(w.addr(off))
}

// Write writes the register at off
func (w *Window) Write(off uintptr, val uint32) {
	w.bus.Write32(w.addr(off), val)
}

// Set ORs bits into the register at off
func (w *Window) Set(off uintptr, bits uint32) {
	w.Reg(off).Set(bits)
}

// Clear clears bits in the register at off
func (w *Window) Clear(off uintptr, bits uint32) {
	w.Reg(off).Clear(bits)
}

// Reg returns the register at off without address validation
func (w *Window) Reg(off uintptr) Reg {
	return Reg{bus: w.bus, addr: w.addr(off)}
}

// Pin returns the register at off only if it lands on want.
// On mismatch the result is the null register and ok is false; accesses
// through it are dropped, so a drifted base can never scribble on an
// unrelated device.
func (w *Window) Pin(off, want uintptr) (r Reg, ok bool) {
	addr := w.addr(off)
	if addr != want {
		return Reg{}, false
	}
	return Reg{bus: w.bus, addr: addr}, true
}

// Abs returns the register at an absolute address, bypassing any window
func Abs(bus Bus, addr uintptr) Reg {
	return Reg{bus: bus, addr: addr}
}

// Reg is a single 32-bit register. The zero Reg is the null register.
type Reg struct {
	bus  Bus
	addr uintptr
}

// Valid reports whether r targets real hardware
func (r Reg) Valid() bool { return r.bus != nil }

// Addr returns the register address, 0 for the null register
func (r Reg) Addr() uintptr { return r.addr }

// Read returns the register value; the null register reads as 0
func (r Reg) Read() uint32 {
	if r.bus == nil {
		return 0
	}
	return r.bus.Read32(r.addr)
}

// Write stores val; dropped for the null register
func (r Reg) Write(val uint32) {
	if r.bus == nil {
		return
	}
	r.bus.Write32(r.addr, val)
}

// Update replaces the bits selected by mask with val in one read-modify-write
func (r Reg) Update(mask, val uint32) {
	if r.bus == nil {
		return
	}
	r.bus.Write32(r.addr, r.bus.Read32(r.addr)&^mask|val&mask)
}

// Set ORs bits into the register
func (r Reg) Set(bits uint32) { r.Update(bits, bits) }

// Clear clears bits in the register
func (r Reg) Clear(bits uint32) { r.Update(bits, 0) }
