package core

var (
	// clockRead is the time base for software timers and event stamps.
	// Board code points it at the scheduler clock once the timer engine is up.
	clockRead func() uint64
	clockHz   uint32
)

// SetClock installs the time base. hz is the rate read advances at.
func SetClock(read func() uint64, hz uint32) {
	clockRead = read
	clockHz = hz
}

// GetTime returns the current time in clock ticks, or 0 before SetClock
func GetTime() uint64 {
	if clockRead == nil {
		return 0
	}
	return clockRead()
}

// ClockHz returns the rate of the installed time base
func ClockHz() uint32 {
	return clockHz
}

// TimerFromUS converts microseconds to clock ticks
func TimerFromUS(us uint32) uint64 {
	return uint64(us) * uint64(clockHz) / 1000000
}

// TimerToUS converts clock ticks to microseconds
func TimerToUS(ticks uint64) uint64 {
	if clockHz == 0 {
		return 0
	}
	return ticks * 1000000 / uint64(clockHz)
}
