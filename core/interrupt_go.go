//go:build !tinygo

package core

// State is a placeholder for the CPU interrupt state on the host
type State uintptr

// disableInterrupts is a no-op on the host; the simulated board runs
// interrupt handlers on the same goroutine that schedules timers.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on the host
func restoreInterrupts(state State) {
}
