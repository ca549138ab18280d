// Package timer drives the RTL819x timer block: two 32-bit counters with a
// shared clock divider, control register and interrupt register, plus the
// watchdog control that shares the window.
//
// Counter 1 free-runs as the system clock source and scheduler clock.
// Counter 0 is the clock event device and the secondary clock source.
package timer

import (
	"errors"
	"fmt"

	"rtl819x/clock"
	"rtl819x/core"
	"rtl819x/irq"
	"rtl819x/mmio"
)

var (
	ErrNoIRQ   = errors.New("timer: no interrupt")
	ErrNoMMIO  = errors.New("timer: no register window")
	ErrInvalid = errors.New("timer: invalid configuration")
	ErrDelta   = errors.New("timer: delta out of range")
)

const (
	component  = "timer"
	eventName  = "rtl819x_soc_timer0"
	source0    = "rtl819x_soc_timer0"
	source1    = "rtl819x_soc_timer1"
	MaxShift   = 8
	MaxDelta   = 0x7fffffff // Largest delta at shift 0 and 1
	DefaultHz  = 100 // Tick rate when none is configured
	freeRunMax = 0xffffffff
)

// Config describes one timer block
type Config struct {
	Regs     *mmio.Window
	IRQ0     uint   // Counter 0 interrupt
	IRQ1     uint   // Counter 1 interrupt, required but unused
	ClockHz  uint32 // Input clock before the divider
	Div      uint32 // Clock divider, at least 1
	Shift    uint   // Insignificant low count bits
	TickRate uint32 // Periodic interrupts per second
}

// Framework is where the engine registers what it provides
type Framework struct {
	IRQs    *irq.Table
	Sources *clock.Registry
	Events  *clock.Events
	Sched   *clock.SchedClock
}

// Engine is an initialized timer block
type Engine struct {
	regs     *mmio.Window
	hz       uint32
	counters [2]*Counter
	device   *Device
	event    *clock.Event
}

// Init programs the timer block and registers both clock sources, the
// scheduler clock and the clock event device with fw. The event device is
// left shut down.
func Init(cfg Config, fw Framework) (*Engine, error) {
	if cfg.IRQ0 == 0 {
		return nil, fmt.Errorf("%w: timer0", ErrNoIRQ)
	}
	if cfg.IRQ1 == 0 {
		return nil, fmt.Errorf("%w: timer1", ErrNoIRQ)
	}
	if cfg.Regs == nil {
		return nil, ErrNoMMIO
	}
	if cfg.Regs.Size() < WindowSize {
		return nil, fmt.Errorf("%w: window %#x bytes, need %#x", ErrNoMMIO, cfg.Regs.Size(), WindowSize)
	}
	if cfg.ClockHz == 0 || cfg.Div == 0 {
		return nil, fmt.Errorf("%w: clock %d / %d", ErrInvalid, cfg.ClockHz, cfg.Div)
	}
	if cfg.Shift > MaxShift {
		return nil, fmt.Errorf("%w: shift %d", ErrInvalid, cfg.Shift)
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = DefaultHz
	}
	hz := cfg.ClockHz / cfg.Div
	if hz < cfg.TickRate {
		return nil, fmt.Errorf("%w: %d Hz cannot tick at %d Hz", ErrInvalid, hz, cfg.TickRate)
	}
	limit := DeltaLimit(cfg.Shift)
	if reload := hz / cfg.TickRate; reload > limit {
		return nil, fmt.Errorf("%w: reload %d exceeds %d at shift %d", ErrInvalid, reload, limit, cfg.Shift)
	}

	regs := cfg.Regs
	e := &Engine{regs: regs, hz: hz}

	regs.Write(RegTCCNR, 0)
	regs.Write(RegTCIR, pendingBits)
	regs.Write(RegWDTCNR, WDTDisable)
	regs.Write(RegCDBR, cfg.Div<<DividerShift)

	e.counters[0] = &Counter{
		name:   source0,
		cnt:    regs.Reg(RegTC0CNT),
		shift:  cfg.Shift,
		rating: 100,
	}
	if err := fw.Sources.RegisterHz(e.counters[0], hz); err != nil {
		return nil, fmt.Errorf("timer0: failed to register clocksource: %w", err)
	}

	e.counters[1] = &Counter{
		name:   source1,
		cnt:    regs.Reg(RegTC1CNT),
		shift:  cfg.Shift,
		rating: 300,
		flags:  clock.SourceContinuous,
	}
	regs.Write(RegTC1DATA, freeRunMax)
	regs.Write(RegTCCNR, TC1EN|TC1TIMER)
	if err := fw.Sources.RegisterHz(e.counters[1], hz); err != nil {
		return nil, fmt.Errorf("timer1: failed to register clocksource: %w", err)
	}

	if !fw.Sched.Bound() {
		fw.Sched.Register(e.counters[1].Read, 32-cfg.Shift, hz)
	}

	d := &Device{
		ch:       channels[0],
		irq:      cfg.IRQ0,
		shift:    cfg.Shift,
		periodic: hz / cfg.TickRate,
		maxDelta: limit,
		shared:   block{ctrl: regs.Reg(RegTCCNR), status: regs.Reg(RegTCIR)},
	}
	var ok [3]bool
	d.data, ok[0] = regs.Pin(RegTC0DATA, PinnedData)
	d.pinned.ctrl, ok[1] = regs.Pin(RegTCCNR, PinnedControl)
	d.pinned.status, ok[2] = regs.Pin(RegTCIR, PinnedStatus)
	if !ok[0] || !ok[1] || !ok[2] {
		core.Warn(component, "timer0 registers not at "+core.Hex(PinnedData)+", event writes dropped")
	}
	e.device = d

	if err := fw.IRQs.Request(cfg.IRQ0, handleInterrupt, eventName, d); err != nil {
		return nil, fmt.Errorf("timer0: failed to register IRQ handler: %w", err)
	}

	ev, err := fw.Events.ConfigAndRegister(d, hz, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("timer0: failed to register clock event: %w", err)
	}
	d.event = ev
	e.event = ev

	core.Info(component, "RTL819x timers started ("+core.Utoa(uint64(hz/1000/1000))+"MHz)")
	return e, nil
}

// DeltaLimit returns the largest delta whose shifted count still fits the
// 32-bit data register
func DeltaLimit(shift uint) uint32 {
	if limit := uint32(freeRunMax >> shift); limit < MaxDelta {
		return limit
	}
	return MaxDelta
}

// EffectiveHz returns the counting rate after the divider
func (e *Engine) EffectiveHz() uint32 { return e.hz }

// Counter returns clock source n (0 or 1)
func (e *Engine) Counter(n int) *Counter { return e.counters[n] }

// Device returns the clock event device
func (e *Engine) Device() *Device { return e.device }

// Event returns the clock event device as registered with the framework
func (e *Engine) Event() *clock.Event { return e.event }

// Pending reports whether counter n has an unacknowledged interrupt
func (e *Engine) Pending(n int) bool {
	return block{status: e.regs.Reg(RegTCIR)}.pending(channels[n])
}
