package irq

// DomainOps sets up a freshly mapped line. Controllers use it to install
// their chip, chip data and flow handler.
type DomainOps interface {
	Map(d *Domain, irq, hw uint) error
}

// MapFunc adapts a function to DomainOps
type MapFunc func(d *Domain, irq, hw uint) error

// Map implements DomainOps
func (f MapFunc) Map(d *Domain, irq, hw uint) error { return f(d, irq, hw) }

// Domain is one controller's numbering space
type Domain struct {
	Name     string
	HostData interface{}

	table  *Table
	ops    DomainOps
	revmap []uint // hw -> irq, 0 when unmapped
}

// AddLinear registers a domain of size lines whose interrupt numbers are
// handed out on first mapping
func (t *Table) AddLinear(name string, size uint, ops DomainOps, hostData interface{}) (*Domain, error) {
	if size == 0 || ops == nil {
		return nil, ErrRange
	}
	return &Domain{
		Name:     name,
		HostData: hostData,
		table:    t,
		ops:      ops,
		revmap:   make([]uint, size),
	}, nil
}

// AddLegacy registers a domain whose size lines are mapped immediately to
// firstIRQ.. starting at hardware line firstHW
func (t *Table) AddLegacy(name string, size, firstIRQ, firstHW uint, ops DomainOps, hostData interface{}) (*Domain, error) {
	if size == 0 || ops == nil || firstIRQ == 0 {
		return nil, ErrRange
	}
	for i := uint(0); i < size; i++ {
		if _, exists := t.descs[firstIRQ+i]; exists {
			return nil, ErrExists
		}
	}

	d := &Domain{
		Name:     name,
		HostData: hostData,
		table:    t,
		ops:      ops,
		revmap:   make([]uint, firstHW+size),
	}
	for i := uint(0); i < size; i++ {
		if err := d.associate(firstIRQ+i, firstHW+i); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Size returns the number of hardware lines the domain can map
func (d *Domain) Size() uint { return uint(len(d.revmap)) }

func (d *Domain) associate(irq, hw uint) error {
	desc, err := d.table.alloc(irq)
	if err != nil {
		return err
	}
	desc.HW = hw
	desc.Domain = d
	if err := d.ops.Map(d, irq, hw); err != nil {
		delete(d.table.descs, irq)
		return err
	}
	d.revmap[hw] = irq
	return nil
}

// CreateMapping returns the interrupt number for hw, allocating one on
// first use
func (d *Domain) CreateMapping(hw uint) (uint, error) {
	if hw >= uint(len(d.revmap)) {
		return 0, ErrRange
	}
	if irq := d.revmap[hw]; irq != 0 {
		return irq, nil
	}

	irq := d.table.next
	for {
		if _, used := d.table.descs[irq]; !used {
			break
		}
		irq++
	}
	if err := d.associate(irq, hw); err != nil {
		return 0, err
	}
	d.table.next = irq + 1
	return irq, nil
}

// FindMapping returns the interrupt number mapped to hw
func (d *Domain) FindMapping(hw uint) (uint, bool) {
	if hw >= uint(len(d.revmap)) || d.revmap[hw] == 0 {
		return 0, false
	}
	return d.revmap[hw], true
}
