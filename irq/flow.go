package irq

// HandleLevel is the flow for level-triggered lines: the line stays masked
// while the consumer runs so a still-asserted source cannot re-enter, and
// is unmasked afterwards unless the line was disabled.
func HandleLevel(desc *Desc) {
	chip := desc.Chip
	chip.MaskAck(&desc.Data)

	if desc.action == nil || desc.disabled {
		desc.unhandled++
		return
	}

	desc.handleEvent()

	if !desc.disabled {
		chip.Unmask(&desc.Data)
	}
}

// HandlePerCPU is the flow for CPU-local lines: ack, run, end of interrupt
func HandlePerCPU(desc *Desc) {
	chip := desc.Chip
	chip.Ack(&desc.Data)
	desc.handleEvent()
	chip.EOI(&desc.Data)
}
