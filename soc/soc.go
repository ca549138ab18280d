// Package soc holds the RTL819x address map and the platform setup that
// is not a driver of its own: identifying the chip, sizing DRAM from the
// memory controller, and restarting through the watchdog.
package soc

import (
	"strings"

	"rtl819x/core"
	"rtl819x/mmio"
)

// Peripheral bases, KSEG1 uncached
const (
	SystemBase  = 0xb8000000
	MemCtrlBase = 0xb8001000
	UART0Base   = 0xb8002000
	UART1Base   = 0xb8002100
	INTCBase    = 0xb8003000
	TimerBase   = 0xb8003100
	GPIOBase    = 0xb8003500
)

// Register addresses
const (
	RegREV = SystemBase + 0x00  // Chip id and revision
	RegDCR = MemCtrlBase + 0x04 // DRAM configuration

	// WatchdogControl is written directly by Restart, independent of the
	// timer driver's mapping
	WatchdogControl = 0xb800311c
)

// Chip ids, the upper 24 bits of the revision register
const (
	IDRTL8196C = 0x80000000
	IDRTL8196E = 0x8196e000
	IDRTL8197D = 0x8197c000
	IDRTL8198C = 0x8198c000
	IDRTL8198  = 0xc0000000
	IDRTL8881A = 0x8881a000
)

var chipNames = map[uint32]string{
	IDRTL8196C: "RTL8196C",
	IDRTL8198:  "RTL8198",
	IDRTL8196E: "RTL8196E",
	IDRTL8197D: "RTL8197D",
	IDRTL8198C: "RTL8198C",
	IDRTL8881A: "RTL8881A",
}

// Split separates a revision register value into chip id and revision
func Split(rev uint32) (id, revision uint32) {
	return rev & 0xffffff00, rev & 0xff
}

// ChipName returns the marketing name for id, or "" if it is not known
func ChipName(id uint32) string {
	return chipNames[id]
}

// SystemType describes the chip from its revision register value, for
// example "RTL8196E (Rev.1)"
func SystemType(rev uint32) string {
	id, r := Split(rev)
	if name := ChipName(id); name != "" {
		return name + " (Rev." + core.Itoa(int(r)) + ")"
	}

	// Unknown ids print at least six hex digits
	digits := strings.TrimLeft(core.HexDigits(id, 8), "0")
	if len(digits) < 6 {
		digits = strings.Repeat("0", 6-len(digits)) + digits
	}
	return "Unknown 0x" + digits + " (Rev." + core.Itoa(int(r)) + ")"
}

// ReadRevision reads the revision register
func ReadRevision(bus mmio.Bus) uint32 {
	return mmio.Abs(bus, RegREV).Read()
}
