package timer

import "rtl819x/mmio"

// Register offsets from the timer block base
const (
	RegTC0DATA = 0x00 // Timer/counter 0 data
	RegTC1DATA = 0x04 // Timer/counter 1 data
	RegTC0CNT  = 0x08 // Timer/counter 0 count
	RegTC1CNT  = 0x0c // Timer/counter 1 count
	RegTCCNR   = 0x10 // Timer/counter control
	RegTCIR    = 0x14 // Timer/counter interrupt
	RegCDBR    = 0x18 // Clock division base
	RegWDTCNR  = 0x1c // Watchdog control

	WindowSize = 0x20
)

// TCCNR bits
const (
	TC0EN    = 1 << 31
	TC0TIMER = 1 << 30
	TC1EN    = 1 << 29
	TC1TIMER = 1 << 28
)

// TCIR bits. The pending bits are write-one-to-clear.
const (
	TC0IE = 1 << 31
	TC1IE = 1 << 30
	TC0IP = 1 << 29
	TC1IP = 1 << 28

	enableBits  = TC0IE | TC1IE
	pendingBits = TC0IP | TC1IP
)

// CDBR holds the divider in its upper half
const DividerShift = 16

// WDTCNR fields
const (
	WDTStop     = 0xa5 << 24
	WDTClear    = 1 << 23
	WDTOverflow = 1 << 20

	WDTDisable = WDTStop | WDTClear | WDTOverflow
)

// Addresses the event device registers are pinned to
const (
	PinnedData    = 0xb8003100
	PinnedControl = 0xb8003110
	PinnedStatus  = 0xb8003114
)

// channel is the per-counter slice of the shared registers
type channel struct {
	data, count uintptr
	run         uint32 // TCCNR enable and timer mode
	ie, ip      uint32 // TCIR enable and pending
}

var channels = [2]channel{
	{data: RegTC0DATA, count: RegTC0CNT, run: TC0EN | TC0TIMER, ie: TC0IE, ip: TC0IP},
	{data: RegTC1DATA, count: RegTC1CNT, run: TC1EN | TC1TIMER, ie: TC1IE, ip: TC1IP},
}

// block owns the control and interrupt registers both counters share.
// Every change is a read-modify-write restricted to one channel's bits,
// and the interrupt register is never written back with a pending bit set
// unless that bit is the one being acknowledged.
type block struct {
	ctrl   mmio.Reg
	status mmio.Reg
}

func (b block) start(ch channel) {
	b.ctrl.Update(ch.run, ch.run)
	b.status.Update(ch.ie|pendingBits, ch.ie)
}

func (b block) stop(ch channel) {
	b.ctrl.Update(ch.run, 0)
	b.status.Update(ch.ie|pendingBits, 0)
}

// ack clears ch's pending bit, leaving both enable bits and the other
// channel's pending bit as they are
func (b block) ack(ch channel) {
	b.status.Write(b.status.Read() & (enableBits | ch.ip))
}

func (b block) pending(ch channel) bool {
	return b.status.Read()&ch.ip != 0
}
