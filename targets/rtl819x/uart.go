//go:build tinygo && mips

package main

import (
	"rtl819x/core"
	"rtl819x/mmio"
	"rtl819x/soc"
)

// 16550 registers, one per word with the byte in the top lane
const (
	uartTHR = 0x00
	uartLSR = 0x14

	lsrTHRE = 0x20 << 24
)

// uart is a polled 16550 transmitter
type uart struct {
	regs *mmio.Window
}

func newUART(base uintptr) uart {
	w, err := mmio.Map(mmio.Volatile{}, base, 0x20)
	if err != nil {
		panic(err.Error())
	}
	return uart{regs: w}
}

func (u uart) WriteByte(c byte) error {
	for u.regs.Read(uartLSR)&lsrTHRE == 0 {
	}
	u.regs.Write(uartTHR, uint32(c)<<24)
	return nil
}

func (u uart) Write(p []byte) (int, error) {
	for _, c := range p {
		u.WriteByte(c)
	}
	return len(p), nil
}

func (u uart) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.WriteByte('\r')
		}
		u.WriteByte(s[i])
	}
}

var console = newUART(soc.UART0Base)

// logLine writes one driver log line to the console
func logLine(level core.Level, component, msg string) {
	console.WriteString("[" + level.String() + "] " + component + ": " + msg + "\n")
}
