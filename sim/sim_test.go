package sim

import (
	"testing"

	"rtl819x/intc"
	"rtl819x/irq"
	"rtl819x/lopi"
	"rtl819x/mmio"
	"rtl819x/soc"
)

func TestINTCRouting(t *testing.T) {
	c := &INTC{}
	c.Write32(intcIRR0, 0xaaaaaaaa)
	c.Write32(intcIRR0+4, 0x000000f0) // Line 9 to CPU 15, line 8 nowhere
	c.Write32(intcGIMR, 1<<3|1<<8|1<<9)

	c.SetLine(3, true)
	if got := c.Lines(); got != 1<<2 {
		t.Errorf("Line 3 routed to %#x, want CPU line 2", got)
	}
	c.SetLine(9, true)
	if got := c.Lines(); got != 1<<2|1<<7 {
		t.Errorf("Lines = %#x, want CPU lines 2 and 7", got)
	}
	c.SetLine(3, false)
	c.SetLine(9, false)
	c.SetLine(8, true)
	if got := c.Lines(); got != 0 {
		t.Errorf("Route below the CPU base asserted %#x", got)
	}

	c.SetLine(4, true)
	if got := c.Lines(); got != 0 {
		t.Errorf("Masked input asserted %#x", got)
	}
	if c.Read32(intcGISR) != 1<<4|1<<8 {
		t.Errorf("GISR = %#x, want raw levels", c.Read32(intcGISR))
	}
	c.Write32(intcGISR, 0xffffffff)
	if c.Level() != 1<<4|1<<8 {
		t.Error("GISR must ignore writes")
	}
}

func TestTimerModel(t *testing.T) {
	ic := &INTC{}
	tm := NewTimer(ic, 0, Timer0Line, Timer1Line)

	tm.Write32(tmrTC0DATA, 10)
	tm.Write32(tmrTCCNR, 1<<31) // Counter mode
	tm.Write32(tmrTCIR, 1<<31)
	if got := tm.Advance(100); got != 10 {
		t.Fatalf("Advance stopped after %d ticks, want 10", got)
	}
	if !tm.Pending(0) || ic.Level()&(1<<Timer0Line) == 0 {
		t.Fatal("Counter 0 fired without asserting its line")
	}
	if tm.Running(0) || tm.Read32(tmrTC0CNT) != 10 {
		t.Errorf("Counter mode must hold at data, count %d", tm.Read32(tmrTC0CNT))
	}

	// Writing zero to the pending bit leaves it set
	tm.Write32(tmrTCIR, 1<<31)
	if !tm.Pending(0) {
		t.Error("Pending cleared without writing one")
	}
	tm.Write32(tmrTCIR, 1<<31|1<<29)
	if tm.Pending(0) || ic.Level()&(1<<Timer0Line) != 0 {
		t.Error("Write-one did not clear pending")
	}
	if tm.Read32(tmrTCIR) != 1<<31 {
		t.Errorf("TCIR = %#x, enable lost", tm.Read32(tmrTCIR))
	}

	// Timer mode reloads; re-enabling restarts from zero
	tm.Write32(tmrTCCNR, 0)
	tm.Write32(tmrTCCNR, 1<<31|1<<30)
	if tm.Read32(tmrTC0CNT) != 0 {
		t.Error("Enable edge did not reset the count")
	}
	tm.Advance(10)
	tm.Advance(3)
	if tm.Read32(tmrTC0CNT) != 3 || !tm.Running(0) {
		t.Errorf("Timer mode count %d after reload", tm.Read32(tmrTC0CNT))
	}

	if got := tm.Advance(0); got != 0 {
		t.Errorf("Advance(0) = %d", got)
	}
}

func TestWatchdog(t *testing.T) {
	m := New(Config{})
	m.Timer.WatchdogTicks = 500
	fired := 0
	m.OnReset(func() { fired++ })

	wdt := mmio.Abs(m.Mem, TimerBase+tmrWDTCNR)
	wdt.Write(0xa5 << 24)
	m.Run(10000)
	if m.Resets() != 0 {
		t.Fatal("Stopped watchdog reset the machine")
	}

	wdt.Write(0)
	m.Run(400)
	wdt.Write(wdtClearBit)
	m.Run(400)
	if m.Resets() != 0 {
		t.Fatal("Clearing the watchdog did not restart its count")
	}
	m.Run(100)
	if m.Resets() != 1 || fired != 1 {
		t.Errorf("Resets = %d, callback %d, want 1", m.Resets(), fired)
	}
	if m.Timer.WatchdogRunning() {
		t.Error("Watchdog still running after reset")
	}
}

type cascade struct {
	m     *Machine
	table *irq.Table
	ic    *intc.Controller
}

func newCascade(t *testing.T) *cascade {
	t.Helper()
	c := &cascade{m: New(Config{}), table: irq.NewTable(16)}
	cpu, err := lopi.Init(c.m.CP0, c.table, 0x80000400)
	if err != nil {
		t.Fatalf("lopi.Init failed: %v", err)
	}
	c.m.Attach(cpu)
	win, _ := mmio.Map(c.m.Mem, INTCBase, intc.WindowSize)
	c.ic, err = intc.Init(win, c.table, lopi.IRQBase+2)
	if err != nil {
		t.Fatalf("intc.Init failed: %v", err)
	}
	return c
}

func TestCascadeEndToEnd(t *testing.T) {
	c := newCascade(t)
	virq, _ := c.ic.Domain().CreateMapping(5)

	calls := 0
	c.table.Request(virq, func(uint, interface{}) irq.Result {
		calls++
		c.m.Assert(5, false) // Device drops its request once serviced
		return irq.Handled
	}, "dev5", nil)

	c.m.Assert(5, true)
	if n := c.m.Run(1); n != 1 || calls != 1 {
		t.Fatalf("Dispatched %d, consumer called %d, want 1/1", n, calls)
	}

	// Two lines pending: one cascade entry each, lowest first
	other, _ := c.ic.Domain().CreateMapping(2)
	var order []uint
	c.table.Free(virq)
	for _, v := range []uint{virq, other} {
		hw := map[uint]uint{virq: 5, other: 2}[v]
		c.table.Request(v, func(n uint, _ interface{}) irq.Result {
			order = append(order, n)
			c.m.Assert(hw, false)
			return irq.Handled
		}, "dev", nil)
	}
	c.m.Assert(5, true)
	c.m.Assert(2, true)
	if n := c.m.Dispatch(); n != 2 {
		t.Fatalf("Dispatched %d, want 2", n)
	}
	if len(order) != 2 || order[0] != other || order[1] != virq {
		t.Errorf("Dispatch order %v, want [%d %d]", order, other, virq)
	}
}

func TestMaskedLineNeverDispatched(t *testing.T) {
	c := newCascade(t)
	virq, _ := c.ic.Domain().CreateMapping(12)
	calls := 0
	c.table.Request(virq, func(uint, interface{}) irq.Result {
		calls++
		c.m.Assert(12, false)
		return irq.Handled
	}, "dev12", nil)

	c.ic.Mask(&irq.Data{HW: 12})
	c.m.Assert(12, true)
	if n := c.m.Run(100); n != 0 || calls != 0 {
		t.Fatalf("Masked line dispatched (%d, %d)", n, calls)
	}

	c.ic.Unmask(&irq.Data{HW: 12})
	if n := c.m.Run(1); n != 1 || calls != 1 {
		t.Errorf("Unmasked line dispatched %d times, consumer %d", n, calls)
	}
}

func TestStuckLineIsBounded(t *testing.T) {
	c := newCascade(t)
	virq, _ := c.ic.Domain().CreateMapping(7)
	c.table.Request(virq, func(uint, interface{}) irq.Result {
		return irq.Handled // Never clears the device
	}, "stuck", nil)

	c.m.Assert(7, true)
	if n := c.m.Dispatch(); n != DefaultMaxDispatch {
		t.Errorf("Dispatched %d, want bound %d", n, DefaultMaxDispatch)
	}
	if c.m.Storms() != 1 {
		t.Errorf("Storms = %d", c.m.Storms())
	}
}

func TestRestartThroughWatchdog(t *testing.T) {
	m := New(Config{})
	m.Timer.WatchdogTicks = 1000

	r := soc.Restarter{
		Bus: m.Mem,
		Hang: func() {
			m.RunUntil(1<<20, func() bool { return m.Resets() > 0 })
		},
	}
	r.Restart()

	if m.Resets() != 1 {
		t.Fatalf("Resets = %d, want 1", m.Resets())
	}
	if m.Now() != 1000 {
		t.Errorf("Reset after %d ticks, want 1000", m.Now())
	}
}

func TestSystemRegisters(t *testing.T) {
	m := New(Config{SoCID: soc.IDRTL8196E | 1, DCR: 0x14880000})
	if got := soc.SystemType(soc.ReadRevision(m.Mem)); got != "RTL8196E (Rev.1)" {
		t.Errorf("SystemType = %q", got)
	}
	if d := soc.ProbeDRAM(m.Mem); d.Size() != 64<<20 {
		t.Errorf("DRAM = %d bytes", d.Size())
	}
}
