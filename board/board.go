// Package board brings an RTL819x platform up from its hardware
// description: SoC identification, the restart hook, both interrupt
// controllers, the timer engine and the periodic tick, in that order.
package board

import (
	"errors"
	"fmt"

	"rtl819x/clock"
	"rtl819x/core"
	"rtl819x/intc"
	"rtl819x/irq"
	"rtl819x/lopi"
	"rtl819x/mmio"
	"rtl819x/protocol"
	"rtl819x/soc"
	"rtl819x/timer"
)

const component = "board"

// FirstDynamicIRQ is the first interrupt number handed out to INTC lines,
// above the eight LOPI lines
const FirstDynamicIRQ = lopi.IRQBase + lopi.IRQCount

// ShiftWarn is the largest count shift that keeps sub-microsecond
// resolution at the usual 100 MHz counting rate
const ShiftWarn = 4

var (
	ErrBadIRQBase   = errors.New("board: unsupported LOPI interrupt base")
	ErrNoClockEvent = errors.New("board: no clock event device")
)

// Platform is what the board runs on
type Platform struct {
	Bus mmio.Bus
	CP0 lopi.Coprocessor

	// Hang is passed to the restart hook; nil spins
	Hang func()

	// Report receives each encoded telemetry frame. nil disables the
	// stats timer.
	Report func(frame []byte)
}

// Board is an initialized platform
type Board struct {
	SystemType string
	DRAM       soc.DRAM

	Table   *irq.Table
	CPU     *lopi.Controller
	INTC    *intc.Controller
	Timer   *timer.Engine
	Sources *clock.Registry
	Events  *clock.Events
	Sched   *clock.SchedClock
	Timers  core.TimerList

	restart  *soc.Restarter
	epoch    *clock.Epoch
	ticks    uint64
	report   func(frame []byte)
	out      *protocol.ScratchOutput
	enc      *protocol.Encoder
	stats    core.Timer
	interval uint64
	statsSeq uint32
}

// Setup initializes the platform described by cfg
func Setup(cfg Config, p Platform) (*Board, error) {
	b := &Board{
		Table:   irq.NewTable(FirstDynamicIRQ),
		Sources: clock.NewRegistry(),
		Events:  &clock.Events{},
		Sched:   &clock.SchedClock{},
		report:  p.Report,
	}

	rev := soc.ReadRevision(p.Bus)
	b.SystemType = soc.SystemType(rev)
	core.Info(component, "RTL819X: SoC is "+b.SystemType)
	b.DRAM = soc.ProbeDRAM(p.Bus)
	core.Info(component, "RTL819X: DRAM: "+b.DRAM.String())

	if v, err := cfg.U32(NodeSoC, "restart"); err == nil && v != 0 {
		b.restart = &soc.Restarter{Bus: p.Bus, Hang: p.Hang}
	}

	if err := b.setupIRQ(cfg, p); err != nil {
		return nil, err
	}
	if err := b.setupTimer(cfg, p); err != nil {
		return nil, err
	}
	if err := b.startTick(cfg); err != nil {
		return nil, err
	}
	return b, nil
}

// MustSetup is Setup for firmware, where a platform that does not come up
// cannot continue. The event ring is dumped before the panic.
func MustSetup(cfg Config, p Platform) *Board {
	b, err := Setup(cfg, p)
	if err != nil {
		core.Error(component, "setup failed: "+err.Error())
		core.DumpEventRing()
		panic(err.Error())
	}
	return b
}

func (b *Board) setupIRQ(cfg Config, p Platform) error {
	base, err := cfg.U32(NodeLOPI, "irq-base")
	if err != nil {
		return err
	}
	if base != lopi.IRQBase {
		return fmt.Errorf("%w: %d", ErrBadIRQBase, base)
	}
	vectors, err := cfg.U32(NodeLOPI, "vectors")
	if err != nil {
		return err
	}
	b.CPU, err = lopi.Init(p.CP0, b.Table, uintptr(vectors))
	if err != nil {
		return err
	}

	regs, err := mapNode(cfg, NodeINTC, p.Bus)
	if err != nil {
		return err
	}
	line, err := cfg.U32Index(NodeINTC, "interrupts", 0)
	if err != nil {
		return err
	}
	parent, ok := b.CPU.Domain().FindMapping(uint(line))
	if !ok {
		return fmt.Errorf("intc: %w: CPU line %d", intc.ErrNoParent, line)
	}
	b.INTC, err = intc.Init(regs, b.Table, parent)
	return err
}

func (b *Board) setupTimer(cfg Config, p Platform) error {
	regs, err := mapNode(cfg, NodeTimer, p.Bus)
	if err != nil {
		return err
	}

	var lines [2]uint
	for i := range lines {
		hw, err := cfg.U32Index(NodeTimer, "interrupts", i)
		if err != nil {
			return err
		}
		if lines[i], err = b.INTC.Domain().CreateMapping(uint(hw)); err != nil {
			return fmt.Errorf("timer%d: %w", i, err)
		}
	}

	tc := timer.Config{Regs: regs, IRQ0: lines[0], IRQ1: lines[1]}
	if tc.ClockHz, err = cfg.U32(NodeTimer, "clock-frequency"); err != nil {
		return err
	}
	if tc.Div, err = cfg.U32(NodeTimer, "clock-div"); err != nil {
		return err
	}
	shift, err := cfg.U32(NodeTimer, "shift")
	if err != nil {
		return err
	}
	tc.Shift = uint(shift)
	if tc.Shift > ShiftWarn {
		core.Warn(component, "timer shift "+core.Itoa(int(shift))+" drops clock resolution")
	}
	if tc.TickRate, err = cfg.U32(NodeBoard, "tick-rate"); err != nil {
		return err
	}

	b.Timer, err = timer.Init(tc, timer.Framework{
		IRQs:    b.Table,
		Sources: b.Sources,
		Events:  b.Events,
		Sched:   b.Sched,
	})
	return err
}

// startTick installs the software time base and the tick consumer, then
// puts the event device into periodic mode
func (b *Board) startTick(cfg Config) error {
	b.epoch = clock.NewEpoch(b.Sched)
	core.SetClock(b.epoch.Now, b.Sched.Hz())

	ev, ok := b.Events.Best()
	if !ok {
		return ErrNoClockEvent
	}
	ev.SetHandler(b.tick)

	if b.report != nil {
		ms, err := cfg.U32(NodeBoard, "stats-interval-ms")
		if err != nil {
			return err
		}
		b.out = protocol.NewScratchOutput()
		b.enc = protocol.NewEncoder(b.out)
		b.sendIdentify()

		b.interval = core.TimerFromUS(ms * 1000)
		if b.interval == 0 {
			b.interval = 1
		}
		b.stats.WakeTime = core.GetTime() + b.interval
		b.stats.Handler = b.sendStats
		b.Timers.Schedule(&b.stats)
	}

	return ev.SetState(clock.StatePeriodic)
}

func (b *Board) tick(*clock.Event) {
	b.ticks++
	b.Timers.Dispatch(core.GetTime())
}

// Ticks returns how many periodic ticks have run
func (b *Board) Ticks() uint64 { return b.ticks }

// Restart stops stats reporting and resets the machine through the
// watchdog. It returns false if the board has no restart hook.
func (b *Board) Restart() bool {
	if b.restart == nil {
		return false
	}
	b.Timers.Cancel(&b.stats)
	b.restart.Restart()
	return true
}

// Snapshot gathers the current interrupt and clock statistics
func (b *Board) Snapshot() protocol.Stats {
	s := protocol.Stats{
		Seq:      b.statsSeq,
		Clock:    core.GetTime(),
		Hz:       b.Sched.Hz(),
		Spurious: uint32(b.Table.SpuriousCount()),
	}
	b.Table.Each(func(d *irq.Desc) {
		if d.Name() != "" && len(s.Counts) < protocol.MaxIRQCounts {
			s.Counts = append(s.Counts, protocol.IRQCount{IRQ: uint32(d.IRQ), Count: uint32(d.Count())})
		}
	})
	return s
}

func (b *Board) flush() {
	b.report(b.out.Result())
	b.out.Reset()
}

func (b *Board) sendIdentify() {
	id := protocol.Identify{SystemType: b.SystemType, DRAM: b.DRAM.Size()}
	b.enc.EncodeFrame(func(o protocol.OutputBuffer) { protocol.EncodeIdentify(o, &id) })
	b.flush()
}

func (b *Board) sendStats(t *core.Timer) uint8 {
	s := b.Snapshot()
	if err := b.enc.EncodeFrame(func(o protocol.OutputBuffer) { protocol.EncodeStats(o, &s) }); err != nil {
		core.Error(component, "stats: "+err.Error())
		b.out.Reset()
	} else {
		b.flush()
	}
	b.statsSeq++
	t.WakeTime += b.interval
	return core.SF_RESCHEDULE
}

func mapNode(cfg Config, node string, bus mmio.Bus) (*mmio.Window, error) {
	base, err := cfg.U32Index(node, "reg", 0)
	if err != nil {
		return nil, err
	}
	size, err := cfg.U32Index(node, "reg", 1)
	if err != nil {
		return nil, err
	}
	w, err := mmio.Map(bus, uintptr(base), uintptr(size))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", node, err)
	}
	return w, nil
}
