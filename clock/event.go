package clock

import "rtl819x/core"

// Features lists the modes a clock event device supports
type Features uint32

const (
	FeaturePeriodic Features = 1 << iota
	FeatureOneshot
)

// State is the operating mode of a clock event device
type State uint8

const (
	StateDetached State = iota
	StateShutdown
	StatePeriodic
	StateOneshot
)

func (s State) String() string {
	switch s {
	case StateDetached:
		return "detached"
	case StateShutdown:
		return "shutdown"
	case StatePeriodic:
		return "periodic"
	case StateOneshot:
		return "oneshot"
	}
	return "state" + core.Itoa(int(s))
}

// EventDevice is a hardware timer able to raise an interrupt after a
// programmed number of ticks
type EventDevice interface {
	Name() string
	Features() Features
	Rating() int
	IRQ() uint

	SetNextEvent(delta uint32) error
	SetStatePeriodic() error
	SetStateOneshot() error
	SetStateShutdown() error
	TickResume() error
}

// Event is a registered clock event device together with its framework
// state and the consumer its interrupts are delivered to
type Event struct {
	dev      EventDevice
	freq     uint32
	minDelta uint32
	maxDelta uint32
	state    State
	handler  func(*Event)

	fired      uint64
	programmed uint64
}

// Events holds the registered clock event devices
type Events struct {
	devices []*Event
}

// ConfigAndRegister records dev's counting rate and delta limits and adds
// it to the set. The device starts out shut down.
func (e *Events) ConfigAndRegister(dev EventDevice, freq, minDelta, maxDelta uint32) (*Event, error) {
	if dev == nil || freq == 0 || minDelta == 0 || minDelta > maxDelta {
		return nil, ErrInvalid
	}
	if dev.Features()&(FeaturePeriodic|FeatureOneshot) == 0 {
		return nil, ErrUnsupported
	}
	for _, ev := range e.devices {
		if ev.dev.Name() == dev.Name() {
			return nil, ErrExists
		}
	}

	ev := &Event{
		dev:      dev,
		freq:     freq,
		minDelta: minDelta,
		maxDelta: maxDelta,
		state:    StateShutdown,
	}
	e.devices = append(e.devices, ev)
	core.Debug(component, "clockevent: registered "+dev.Name()+" at "+core.Utoa(uint64(freq))+" Hz")
	return ev, nil
}

// Best returns the highest rated registered device
func (e *Events) Best() (*Event, bool) {
	var best *Event
	for _, ev := range e.devices {
		if best == nil || ev.dev.Rating() > best.dev.Rating() {
			best = ev
		}
	}
	return best, best != nil
}

// Device returns the underlying hardware device
func (ev *Event) Device() EventDevice { return ev.dev }

// Freq returns the device's counting rate
func (ev *Event) Freq() uint32 { return ev.freq }

// Limits returns the smallest and largest programmable delta
func (ev *Event) Limits() (minDelta, maxDelta uint32) { return ev.minDelta, ev.maxDelta }

// State returns the last mode the device was switched to
func (ev *Event) State() State { return ev.state }

// Fired returns how many interrupts were delivered to the consumer
func (ev *Event) Fired() uint64 { return ev.fired }

// Programmed returns how many times a next event was set
func (ev *Event) Programmed() uint64 { return ev.programmed }

// SetHandler installs the consumer called on every device interrupt
func (ev *Event) SetHandler(fn func(*Event)) { ev.handler = fn }

// SetState switches the device to s
func (ev *Event) SetState(s State) error {
	var err error
	switch s {
	case StatePeriodic:
		if ev.dev.Features()&FeaturePeriodic == 0 {
			return ErrUnsupported
		}
		err = ev.dev.SetStatePeriodic()
	case StateOneshot:
		if ev.dev.Features()&FeatureOneshot == 0 {
			return ErrUnsupported
		}
		err = ev.dev.SetStateOneshot()
	case StateShutdown:
		err = ev.dev.SetStateShutdown()
	default:
		return ErrInvalid
	}
	if err != nil {
		return err
	}
	ev.state = s
	core.RecordEvent(core.EvtModeChange, uint16(ev.dev.IRQ()), uint32(s))
	return nil
}

// Program arms the device to fire delta ticks from now. delta is clamped
// to the device limits.
func (ev *Event) Program(delta uint32) error {
	if delta < ev.minDelta {
		delta = ev.minDelta
	}
	if delta > ev.maxDelta {
		delta = ev.maxDelta
	}
	if err := ev.dev.SetNextEvent(delta); err != nil {
		return err
	}
	ev.programmed++
	return nil
}

// Resume restores the device after a suspend
func (ev *Event) Resume() error {
	return ev.dev.TickResume()
}

// Handle delivers one device interrupt to the consumer
func (ev *Event) Handle() {
	ev.fired++
	if ev.handler != nil {
		ev.handler(ev)
	}
}
