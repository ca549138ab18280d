//go:build tinygo && mips

package lopi

import "device"

// CP0 reaches the Lexra coprocessor 0 extension registers with the
// mflxc0/mtlxc0 instructions. The assembler does not know them, so they are
// emitted as raw words with rt fixed to $8 (t0).
//
//	mflxc0 rt, rd = 0x40600000 | rt<<16 | rd<<11
//	mtlxc0 rt, rd = 0x40e00000 | rt<<16 | rd<<11
//
// estatus is $0, ecause reads from $1 and is written through $2, intvec is $3.
type CP0 struct{}

func (CP0) EStatus() uint32 {
	return uint32(device.AsmFull(".word 0x40680000\nmove {}, $$8", nil))
}

func (CP0) SetEStatus(v uint32) {
	device.AsmFull("move $$8, {v}\n.word 0x40e80000", map[string]interface{}{"v": v})
}

func (CP0) ECause() uint32 {
	return uint32(device.AsmFull(".word 0x40680800\nmove {}, $$8", nil))
}

func (CP0) SetECause(v uint32) {
	device.AsmFull("move $$8, {v}\n.word 0x40e81000", map[string]interface{}{"v": v})
}

func (CP0) IntVec() uintptr {
	return device.AsmFull(".word 0x40681800\nmove {}, $$8", nil)
}

func (CP0) SetIntVec(addr uintptr) {
	device.AsmFull("move $$8, {v}\n.word 0x40e81800", map[string]interface{}{"v": addr})
}

// Hazard covers the Lexra pipeline's status-to-interrupt latency
func (CP0) Hazard() {
	device.Asm("nop\nnop\nnop\nnop")
}
