package timer

import (
	"rtl819x/clock"
	"rtl819x/core"
	"rtl819x/irq"
	"rtl819x/mmio"
)

// Mode is the event device's operating mode as the hardware sees it
type Mode uint8

const (
	ModeShutdown Mode = iota
	ModePeriodic
	ModeOneshot
)

func (m Mode) String() string {
	switch m {
	case ModeShutdown:
		return "shutdown"
	case ModePeriodic:
		return "periodic"
	case ModeOneshot:
		return "oneshot"
	}
	return "mode" + core.Itoa(int(m))
}

// Device is the clock event device built on counter 0
type Device struct {
	ch       channel
	irq      uint
	shift    uint
	periodic uint32
	maxDelta uint32
	mode     Mode

	data   mmio.Reg // Pinned to PinnedData
	pinned block    // Pinned control and status, used to start and stop
	shared block    // Window control and status, used to acknowledge

	event *clock.Event
}

func (d *Device) Name() string { return eventName }
func (d *Device) Rating() int  { return 100 }
func (d *Device) IRQ() uint    { return d.irq }

func (d *Device) Features() clock.Features {
	return clock.FeaturePeriodic | clock.FeatureOneshot
}

// Mode returns the current hardware mode
func (d *Device) Mode() Mode { return d.mode }

// PeriodicReload returns the tick count between periodic interrupts
func (d *Device) PeriodicReload() uint32 { return d.periodic }

// Pinned reports whether every event register landed on its fixed address
func (d *Device) Pinned() bool {
	return d.data.Valid() && d.pinned.ctrl.Valid() && d.pinned.status.Valid()
}

// SetNextEvent arms the channel to fire delta ticks from now, whatever
// mode it was in
func (d *Device) SetNextEvent(delta uint32) error {
	if delta > d.maxDelta {
		return ErrDelta
	}
	d.pinned.stop(d.ch)
	d.data.Write(delta << d.shift)
	d.pinned.start(d.ch)
	core.RecordEvent(core.EvtNextEvent, uint16(d.irq), delta)
	return nil
}

// SetStatePeriodic starts ticking at the configured tick rate
func (d *Device) SetStatePeriodic() error {
	d.mode = ModePeriodic
	return d.SetNextEvent(d.periodic)
}

// SetStateOneshot stops the channel; the next SetNextEvent arms it
func (d *Device) SetStateOneshot() error {
	d.mode = ModeOneshot
	d.pinned.stop(d.ch)
	return nil
}

func (d *Device) SetStateShutdown() error {
	d.mode = ModeShutdown
	d.pinned.stop(d.ch)
	return nil
}

func (d *Device) TickResume() error {
	d.pinned.stop(d.ch)
	return nil
}

// handleInterrupt is the counter 0 interrupt consumer
func handleInterrupt(_ uint, arg interface{}) irq.Result {
	d, _ := arg.(*Device)
	if d == nil {
		return irq.None
	}

	d.shared.ack(d.ch)

	if d.mode != ModePeriodic {
		d.mode = ModeShutdown
		d.pinned.stop(d.ch)
	}
	core.RecordEvent(core.EvtTimerFire, uint16(d.irq), uint32(d.mode))

	if d.event != nil {
		d.event.Handle()
	}
	return irq.Handled
}
