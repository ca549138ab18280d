// Package irq is the interrupt descriptor and domain framework the
// controller drivers plug into. It maps domain-local hardware line numbers
// to system-wide interrupt numbers and runs the flow handler for a line when
// it fires.
package irq

import (
	"errors"
	"sort"

	"rtl819x/core"
)

var (
	ErrNoDesc = errors.New("irq: no descriptor")
	ErrBusy   = errors.New("irq: line already requested")
	ErrExists = errors.New("irq: descriptor already allocated")
	ErrRange  = errors.New("irq: hardware line out of range")
	ErrNoChip = errors.New("irq: no chip")
)

// Result reports whether a consumer handled its interrupt
type Result int

const (
	None Result = iota
	Handled
)

// Chip is the set of line operations a controller tier implements
type Chip interface {
	Name() string
	Mask(d *Data)
	Unmask(d *Data)
	Ack(d *Data)
	MaskAck(d *Data)
	EOI(d *Data)
	Enable(d *Data)
	Disable(d *Data)
}

// Data is the per-line view handed to chip operations
type Data struct {
	IRQ      uint // System-wide interrupt number
	HW       uint // Line number within the owning domain
	Chip     Chip
	ChipData interface{}
	Domain   *Domain
}

// Handler is a consumer callback installed with Table.Request
type Handler func(irq uint, arg interface{}) Result

// FlowHandler drives the chip operations around a consumer call
type FlowHandler func(desc *Desc)

type action struct {
	handler Handler
	name    string
	arg     interface{}
}

// Desc is the descriptor of one system-wide interrupt number
type Desc struct {
	Data

	flow        FlowHandler
	handlerData interface{}
	action      *action
	disabled    bool

	count     uint64 // Times the flow ran
	unhandled uint64 // Times no consumer claimed it
}

// HandlerData returns the data installed with SetChainedHandler
func (d *Desc) HandlerData() interface{} { return d.handlerData }

// Count returns how many times the line has fired
func (d *Desc) Count() uint64 { return d.count }

// Unhandled returns how many firings no consumer claimed
func (d *Desc) Unhandled() uint64 { return d.unhandled }

// Name returns the requesting consumer's name, or "" if the line is free
func (d *Desc) Name() string {
	if d.action == nil {
		return ""
	}
	return d.action.name
}

// handleEvent calls the consumer, if any, and tracks unclaimed firings
func (d *Desc) handleEvent() {
	if d.action == nil || d.action.handler(d.IRQ, d.action.arg) != Handled {
		d.unhandled++
	}
}

// Table owns every interrupt descriptor in the system.
// It is populated during init and read-only from the dispatch path.
type Table struct {
	descs    map[uint]*Desc
	next     uint // Next number handed to a linear domain mapping
	spurious uint64
	bad      uint64
}

// NewTable returns an empty table. Linear domain mappings are numbered
// from firstDynamic upward; lower numbers are left for legacy domains.
func NewTable(firstDynamic uint) *Table {
	if firstDynamic == 0 {
		firstDynamic = 1 // 0 is never a valid interrupt number
	}
	return &Table{
		descs: make(map[uint]*Desc),
		next:  firstDynamic,
	}
}

// Desc returns the descriptor for irq
func (t *Table) Desc(irq uint) (*Desc, bool) {
	d, ok := t.descs[irq]
	return d, ok
}

func (t *Table) alloc(irq uint) (*Desc, error) {
	if irq == 0 {
		return nil, ErrRange
	}
	if _, exists := t.descs[irq]; exists {
		return nil, ErrExists
	}
	d := &Desc{Data: Data{IRQ: irq}}
	t.descs[irq] = d
	return d, nil
}

// SetChipAndHandler installs the chip and flow handler for irq
func (t *Table) SetChipAndHandler(irq uint, chip Chip, flow FlowHandler) error {
	d, ok := t.descs[irq]
	if !ok {
		return ErrNoDesc
	}
	d.Chip = chip
	d.flow = flow
	return nil
}

// SetChipData attaches controller context to irq
func (t *Table) SetChipData(irq uint, data interface{}) error {
	d, ok := t.descs[irq]
	if !ok {
		return ErrNoDesc
	}
	d.ChipData = data
	return nil
}

// SetChainedHandler turns irq into a cascade input: flow replaces the
// line's flow handler, data is made available through HandlerData, and the
// line is unmasked immediately. A chained line never takes a consumer.
func (t *Table) SetChainedHandler(irq uint, flow FlowHandler, data interface{}) error {
	d, ok := t.descs[irq]
	if !ok {
		return ErrNoDesc
	}
	if d.Chip == nil {
		return ErrNoChip
	}
	if d.action != nil {
		return ErrBusy
	}
	d.flow = flow
	d.handlerData = data
	d.disabled = false
	d.Chip.Unmask(&d.Data)
	return nil
}

// Request installs consumer h on irq and enables the line
func (t *Table) Request(irq uint, h Handler, name string, arg interface{}) error {
	d, ok := t.descs[irq]
	if !ok {
		return ErrNoDesc
	}
	if d.Chip == nil {
		return ErrNoChip
	}
	if d.action != nil || d.handlerData != nil {
		return ErrBusy
	}
	d.action = &action{handler: h, name: name, arg: arg}
	d.disabled = false
	d.Chip.Enable(&d.Data)
	return nil
}

// Free removes the consumer from irq and disables the line
func (t *Table) Free(irq uint) error {
	d, ok := t.descs[irq]
	if !ok || d.action == nil {
		return ErrNoDesc
	}
	d.disabled = true
	d.Chip.Disable(&d.Data)
	d.action = nil
	return nil
}

// Handle runs the flow handler of irq. Unknown numbers are counted as bad
// interrupts and reported.
func (t *Table) Handle(irq uint) error {
	d, ok := t.descs[irq]
	if !ok || d.flow == nil {
		t.bad++
		core.Warn("irq", "bad interrupt "+core.Itoa(int(irq)))
		return ErrNoDesc
	}
	d.count++
	d.flow(d)
	return nil
}

// Spurious records a controller firing with nothing pending
func (t *Table) Spurious() {
	t.spurious++
	core.Debug("irq", "spurious interrupt")
}

// SpuriousCount returns the number of spurious interrupts seen
func (t *Table) SpuriousCount() uint64 { return t.spurious }

// BadCount returns the number of interrupts with no descriptor
func (t *Table) BadCount() uint64 { return t.bad }

// Each calls fn for every descriptor in ascending interrupt number order
func (t *Table) Each(fn func(d *Desc)) {
	irqs := make([]int, 0, len(t.descs))
	for irq := range t.descs {
		irqs = append(irqs, int(irq))
	}
	sort.Ints(irqs)
	for _, irq := range irqs {
		fn(t.descs[uint(irq)])
	}
}
