//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Volatile is the hardware bus: every access is a real uncached load or
// store. Addresses are KSEG1 virtual addresses (0xB8000000 and up on RTL819x).
type Volatile struct{}

// Read32 implements Bus
func (Volatile) Read32(addr uintptr) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(addr)).Get()
}

// Write32 implements Bus
func (Volatile) Write32(addr uintptr, val uint32) {
	(*volatile.Register32)(unsafe.Pointer(addr)).Set(val)
}
