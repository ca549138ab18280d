package soc

import (
	"rtl819x/core"
	"rtl819x/mmio"
)

const component = "soc"

// Restarter resets the chip by letting the watchdog expire
type Restarter struct {
	Bus mmio.Bus

	// Hang runs after the watchdog is armed. nil spins forever, which is
	// what the hardware needs; the model supplies one that returns.
	Hang func()
}

// Restart dumps the event ring, enables the watchdog with a zero control
// word and waits for it to fire
func (r Restarter) Restart() {
	core.Info(component, "Restarting...")
	core.RecordEvent(core.EvtRestart, 0, 0)
	core.DumpEventRing()
	mmio.Abs(r.Bus, WatchdogControl).Write(0)

	if r.Hang != nil {
		r.Hang()
		return
	}
	for {
	}
}
