package soc

import (
	"rtl819x/core"
	"rtl819x/mmio"
)

// DRAM is the memory geometry programmed into the memory controller
type DRAM struct {
	Version  int    // DCR layout, 1 or 2
	DCR      uint32 // Raw register value
	BusBytes uint32
	Chips    uint32
	Rows     uint32
	Cols     uint32
	Banks    uint32
}

// Size returns the DRAM size in bytes
func (d DRAM) Size() uint64 {
	return uint64(d.BusBytes) * uint64(d.Chips) * uint64(d.Rows) * uint64(d.Cols) * uint64(d.Banks)
}

// String formats the geometry the way the boot log reports it
func (d DRAM) String() string {
	return core.Utoa(d.Size()/1024/1024) + "MiB DCRv" + core.Itoa(d.Version) +
		"(" + core.HexDigits(d.DCR, 8) + ")" +
		" (bits=" + core.Utoa(uint64(d.BusBytes)*8) +
		" chips=" + core.Utoa(uint64(d.Chips)) +
		" rows=" + core.Utoa(uint64(d.Rows)) +
		" cols=" + core.Utoa(uint64(d.Cols)) +
		" banks=" + core.Utoa(uint64(d.Banks)) + ")"
}

func field(v uint32, shift, width uint) uint32 {
	return v >> shift & (1<<width - 1)
}

// DecodeDCR decodes dcr using the layout of the chip in rev. The RTL8881A
// uses the second layout; every other chip, known or not, the first.
func DecodeDCR(rev, dcr uint32) DRAM {
	id, _ := Split(rev)
	d := DRAM{DCR: dcr}
	var bus, chips, rows, cols, banks uint32
	switch id {
	case IDRTL8881A:
		d.Version = 2
		banks = field(dcr, 28, 2)
		bus = field(dcr, 24, 2)
		rows = field(dcr, 20, 4)
		cols = field(dcr, 16, 4)
		chips = field(dcr, 15, 1)
	default:
		d.Version = 1
		bus = field(dcr, 28, 2)
		chips = field(dcr, 27, 1)
		rows = field(dcr, 25, 2)
		cols = field(dcr, 22, 3)
		banks = field(dcr, 19, 1)
	}
	d.BusBytes = 1 << bus
	d.Chips = 1 << chips
	d.Rows = 2048 << rows
	d.Cols = 256 << cols
	d.Banks = 2 << banks
	return d
}

// ProbeDRAM reads the revision and DCR registers and decodes them
func ProbeDRAM(bus mmio.Bus) DRAM {
	rev := ReadRevision(bus)
	d := DecodeDCR(rev, mmio.Abs(bus, RegDCR).Read())
	if id, _ := Split(rev); id != IDRTL8198 && id != IDRTL8881A {
		core.Info(component, "DRAM: Assuming v1 DRAM controller")
	}
	return d
}
