package sim

import "math"

// Timer block register offsets and bits, as the hardware decodes them
const (
	tmrTC0DATA = 0x00
	tmrTC1DATA = 0x04
	tmrTC0CNT  = 0x08
	tmrTC1CNT  = 0x0c
	tmrTCCNR   = 0x10
	tmrTCIR    = 0x14
	tmrCDBR    = 0x18
	tmrWDTCNR  = 0x1c

	TimerSize = 0x20

	wdtStopMagic = 0xa5
	wdtClearBit  = 1 << 23
)

// DefaultWatchdogTicks is how long an enabled watchdog runs before it
// resets the machine
const DefaultWatchdogTicks = 1 << 16

type counter struct {
	data   uint32
	count  uint32
	done   bool // Counter mode channel that reached its data value
	enBit  uint32
	tmrBit uint32
	ieBit  uint32
	ipBit  uint32
	line   uint // INTC input
}

// Timer models the two-counter timer block and the watchdog.
//
// A running counter advances by 1<<Shift per tick and fires when it reaches
// its data value. In timer mode it then restarts from 0; in counter mode it
// holds. Enabling a counter restarts it from 0. A fired counter sets its
// pending bit; pending and interrupt-enable together assert its INTC line.
type Timer struct {
	Shift         uint
	WatchdogTicks uint64
	OnReset       func()

	intc   *INTC
	ch     [2]counter
	ctrl   uint32
	status uint32
	cdbr   uint32
	wdt    uint32
	wdtRun uint64 // Ticks since the watchdog was last cleared
}

// NewTimer returns a timer block whose counters drive INTC inputs line0
// and line1
func NewTimer(intc *INTC, shift uint, line0, line1 uint) *Timer {
	t := &Timer{
		Shift:         shift,
		WatchdogTicks: DefaultWatchdogTicks,
		intc:          intc,
		wdt:           wdtStopMagic << 24,
	}
	t.ch[0] = counter{enBit: 1 << 31, tmrBit: 1 << 30, ieBit: 1 << 31, ipBit: 1 << 29, line: line0}
	t.ch[1] = counter{enBit: 1 << 29, tmrBit: 1 << 28, ieBit: 1 << 30, ipBit: 1 << 28, line: line1}
	return t
}

// Read32 implements mmio.Device
func (t *Timer) Read32(off uintptr) uint32 {
	switch off {
	case tmrTC0DATA:
		return t.ch[0].data
	case tmrTC1DATA:
		return t.ch[1].data
	case tmrTC0CNT:
		return t.ch[0].count
	case tmrTC1CNT:
		return t.ch[1].count
	case tmrTCCNR:
		return t.ctrl
	case tmrTCIR:
		return t.status
	case tmrCDBR:
		return t.cdbr
	case tmrWDTCNR:
		return t.wdt
	}
	return 0
}

// Write32 implements mmio.Device
func (t *Timer) Write32(off uintptr, val uint32) {
	switch off {
	case tmrTC0DATA:
		t.ch[0].data = val
	case tmrTC1DATA:
		t.ch[1].data = val
	case tmrTCCNR:
		for i := range t.ch {
			c := &t.ch[i]
			if t.ctrl&c.enBit == 0 && val&c.enBit != 0 {
				c.count = 0
				c.done = false
			}
		}
		t.ctrl = val
	case tmrTCIR:
		var ie, clear uint32
		for _, c := range t.ch {
			ie |= c.ieBit
			clear |= val & c.ipBit
		}
		t.status = t.status&^ie&^clear | val&ie
	case tmrCDBR:
		t.cdbr = val
	case tmrWDTCNR:
		if val&wdtClearBit != 0 {
			t.wdtRun = 0
		}
		t.wdt = val
	}
	t.update()
}

// Divider returns the programmed clock divider
func (t *Timer) Divider() uint32 { return t.cdbr >> 16 }

// WatchdogRunning reports whether the watchdog is counting towards reset
func (t *Timer) WatchdogRunning() bool { return t.wdt>>24 != wdtStopMagic }

// Running reports whether counter n is enabled
func (t *Timer) Running(n int) bool {
	c := &t.ch[n]
	return t.ctrl&c.enBit != 0 && !c.done
}

// Pending reports whether counter n has fired and not been acknowledged
func (t *Timer) Pending(n int) bool { return t.status&t.ch[n].ipBit != 0 }

// update drives the INTC inputs from the pending and enable bits
func (t *Timer) update() {
	if t.intc == nil {
		return
	}
	for _, c := range t.ch {
		t.intc.SetLine(c.line, t.status&c.ieBit != 0 && t.status&c.ipBit != 0)
	}
}

// untilFire returns how many ticks counter n needs to reach its data value
func (t *Timer) untilFire(n int) uint64 {
	if !t.Running(n) {
		return math.MaxUint64
	}
	c := &t.ch[n]
	if c.count >= c.data {
		return 1
	}
	inc := uint64(1) << t.Shift
	return (uint64(c.data-c.count) + inc - 1) / inc
}

// Advance moves time forward by at most max ticks, stopping early at the
// first tick on which a counter fires or the watchdog expires. Returns the
// number of ticks taken, at least 1 when max is not 0.
func (t *Timer) Advance(max uint64) uint64 {
	step := max
	for n := range t.ch {
		if u := t.untilFire(n); u < step {
			step = u
		}
	}
	if t.WatchdogRunning() && t.WatchdogTicks > t.wdtRun {
		if u := t.WatchdogTicks - t.wdtRun; u < step {
			step = u
		}
	}
	if step == 0 {
		return 0
	}

	inc := uint64(1) << t.Shift
	for n := range t.ch {
		if !t.Running(n) {
			continue
		}
		c := &t.ch[n]
		next := uint64(c.count) + step*inc
		if next < uint64(c.data) {
			c.count = uint32(next)
			continue
		}
		t.status |= c.ipBit
		if t.ctrl&c.tmrBit != 0 {
			c.count = 0
		} else {
			c.count = c.data
			c.done = true
		}
	}

	if t.WatchdogRunning() {
		t.wdtRun += step
		if t.wdtRun >= t.WatchdogTicks {
			t.reset()
		}
	}
	t.update()
	return step
}

// reset returns the block to its power-on state and reports the reset
func (t *Timer) reset() {
	for i := range t.ch {
		t.ch[i].data = 0
		t.ch[i].count = 0
		t.ch[i].done = false
	}
	t.ctrl = 0
	t.status = 0
	t.cdbr = 0
	t.wdt = wdtStopMagic << 24
	t.wdtRun = 0
	if t.OnReset != nil {
		t.OnReset()
	}
}
