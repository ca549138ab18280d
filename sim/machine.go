// Package sim is a software model of the RTL819x interrupt and timer
// hardware: the SoC interrupt controller, the timer block with its
// watchdog, and the CPU's external interrupt lines. Drivers run against it
// unmodified through an mmio.Memory bus.
package sim

import (
	"rtl819x/core"
	"rtl819x/lopi"
	"rtl819x/mmio"
)

const lopiBase = lopi.IRQBase

// Default hardware layout
const (
	SystemBase  = 0xb8000000
	MemCtrlBase = 0xb8001000
	INTCBase    = 0xb8003000
	TimerBase   = 0xb8003100

	Timer0Line = 8
	Timer1Line = 9

	// DefaultMaxDispatch bounds the dispatches taken for one interrupt
	// window before the model declares an interrupt storm
	DefaultMaxDispatch = 64
)

// Config describes the modelled machine
type Config struct {
	Shift       uint   // Timer count shift
	SoCID       uint32 // Revision register contents
	DCR         uint32 // DRAM configuration register contents
	MaxDispatch int
}

// Machine ties the device models to a bus and a CPU register file
type Machine struct {
	Mem   *mmio.Memory
	INTC  *INTC
	Timer *Timer
	CP0   *lopi.SoftRegisters

	cpu         *lopi.Controller
	maxDispatch int
	now         uint64
	resets      int
	storms      int
	onReset     func()
}

// New builds a machine with the devices at their default addresses
func New(cfg Config) *Machine {
	m := &Machine{
		Mem:         mmio.NewMemory(),
		INTC:        &INTC{},
		maxDispatch: cfg.MaxDispatch,
	}
	if m.maxDispatch <= 0 {
		m.maxDispatch = DefaultMaxDispatch
	}
	m.Timer = NewTimer(m.INTC, cfg.Shift, Timer0Line, Timer1Line)
	m.Timer.OnReset = m.reset
	m.CP0 = &lopi.SoftRegisters{Lines: m.INTC.Lines}

	m.Mem.Attach(INTCBase, INTCSize, m.INTC)
	m.Mem.Attach(TimerBase, TimerSize, m.Timer)
	m.Mem.Poke(SystemBase, cfg.SoCID)
	m.Mem.Poke(MemCtrlBase+4, cfg.DCR)
	return m
}

// Attach gives the machine the CPU controller to dispatch through
func (m *Machine) Attach(cpu *lopi.Controller) { m.cpu = cpu }

// OnReset installs fn to run when the watchdog resets the machine
func (m *Machine) OnReset(fn func()) { m.onReset = fn }

// Now returns the ticks elapsed since the machine was built
func (m *Machine) Now() uint64 { return m.now }

// Resets returns how many watchdog resets occurred
func (m *Machine) Resets() int { return m.resets }

// Storms returns how many dispatch windows hit the dispatch bound
func (m *Machine) Storms() int { return m.storms }

// Assert drives an external device's INTC input
func (m *Machine) Assert(line uint, asserted bool) {
	m.INTC.SetLine(line, asserted)
}

// Dispatch takes interrupts until no enabled CPU line is pending and
// returns how many were taken. The highest numbered line is taken first.
func (m *Machine) Dispatch() int {
	if m.cpu == nil {
		return 0
	}
	n := 0
	for {
		pending := m.cpu.Pending()
		if pending == 0 {
			return n
		}
		if n == m.maxDispatch {
			m.storms++
			core.Warn("sim", "interrupt storm, lines "+core.Hex(uint32(pending))+" still pending")
			return n
		}
		line := uint(7)
		for pending&(1<<line) == 0 {
			line--
		}
		m.cpu.Dispatch(lopiBase + line)
		n++
	}
}

// Run advances the machine by ticks, taking interrupts as they are raised.
// Returns the number of interrupts taken.
func (m *Machine) Run(ticks uint64) int {
	n := m.Dispatch()
	for ticks > 0 {
		step := m.Timer.Advance(ticks)
		ticks -= step
		m.now += step
		n += m.Dispatch()
	}
	return n
}

// RunUntil advances until done reports true or limit ticks have passed.
// Returns whether done was satisfied.
func (m *Machine) RunUntil(limit uint64, done func() bool) bool {
	m.Dispatch()
	for limit > 0 {
		if done() {
			return true
		}
		step := m.Timer.Advance(limit)
		limit -= step
		m.now += step
		m.Dispatch()
	}
	return done()
}

func (m *Machine) reset() {
	m.resets++
	m.INTC.mask = 0
	core.Warn("sim", "watchdog reset")
	if m.onReset != nil {
		m.onReset()
	}
}
