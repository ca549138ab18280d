package lopi

// SoftRegisters is a software coprocessor register file for hosts without
// the Lexra extension. Lines reports externally asserted inputs (bit n for
// line n); they show up in ECause next to software-written cause bits.
type SoftRegisters struct {
	Lines func() uint8

	estatus uint32
	ecause  uint32
	intvec  uintptr
	hazards int
}

func (r *SoftRegisters) EStatus() uint32     { return r.estatus }
func (r *SoftRegisters) SetEStatus(v uint32) { r.estatus = v }

func (r *SoftRegisters) ECause() uint32 {
	v := r.ecause
	if r.Lines != nil {
		v |= uint32(r.Lines()) << lineShift
	}
	return v
}

func (r *SoftRegisters) SetECause(v uint32) { r.ecause = v }
func (r *SoftRegisters) IntVec() uintptr    { return r.intvec }

func (r *SoftRegisters) SetIntVec(addr uintptr) { r.intvec = addr }

// Hazard counts barriers so tests can check every status change has one
func (r *SoftRegisters) Hazard() { r.hazards++ }

// Hazards returns the number of barriers issued
func (r *SoftRegisters) Hazards() int { return r.hazards }
