//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks CPU interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the CPU interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
