//go:build tinygo && mips

// Firmware entry point for RTL819x boards. The boot loader leaves the CPU
// in KSEG0 with interrupts off and the LOPI vector stubs copied to the
// address in board.json; each stub calls lopi_dispatch with its interrupt
// number.
package main

import (
	_ "embed"

	"rtl819x/board"
	"rtl819x/core"
	"rtl819x/lopi"
	"rtl819x/mmio"
	"rtl819x/soc"
)

//go:embed board.json
var boardJSON []byte

var (
	b         *board.Board
	telemetry = newUART(soc.UART1Base)
)

//export lopi_dispatch
func lopiDispatch(irq uint32) {
	b.CPU.Dispatch(uint(irq))
}

func main() {
	core.SetLogWriter(logLine)

	cfg, err := board.LoadConfig(boardJSON)
	if err != nil {
		panic("board.json: " + err.Error())
	}
	b = board.MustSetup(cfg, board.Platform{
		Bus: mmio.Volatile{},
		CP0: lopi.CP0{},
		Report: func(frame []byte) {
			telemetry.Write(frame)
		},
	})

	// Everything from here on runs from the tick interrupt
	select {}
}
