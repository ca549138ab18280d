package mmio

import "sync"

// Device is a register model claiming a range of a Memory bus.
// off is relative to the base the device was attached at.
type Device interface {
	Read32(off uintptr) uint32
	Write32(off uintptr, val uint32)
}

// Access is one bus transaction, reported to the trace hook
type Access struct {
	Addr  uintptr
	Value uint32
	Write bool
}

type region struct {
	base, size uintptr
	dev        Device
}

// Memory is a host-side Bus. Addresses not claimed by a device behave as
// plain RAM words that read back what was last written.
type Memory struct {
	mu      sync.Mutex
	words   map[uintptr]uint32
	regions []region
	trace   func(Access)
}

// NewMemory returns an empty bus
func NewMemory() *Memory {
	return &Memory{words: make(map[uintptr]uint32)}
}

// Attach routes accesses in [base, base+size) to dev
func (m *Memory) Attach(base, size uintptr, dev Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = append(m.regions, region{base: base, size: size, dev: dev})
}

// Trace installs fn to observe every access; nil removes it
func (m *Memory) Trace(fn func(Access)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = fn
}

func (m *Memory) lookup(addr uintptr) (Device, uintptr) {
	for _, r := range m.regions {
		if addr >= r.base && addr < r.base+r.size {
			return r.dev, addr - r.base
		}
	}
	return nil, 0
}

// Read32 implements Bus
func (m *Memory) Read32(addr uintptr) uint32 {
	m.mu.Lock()
	dev, off := m.lookup(addr)
	trace := m.trace
	var val uint32
	if dev == nil {
		val = m.words[addr]
	}
	m.mu.Unlock()

	// Device models may raise interrupts from inside an access, so they
	// run without the bus lock held.
	if dev != nil {
		val = dev.Read32(off)
	}
	if trace != nil {
		trace(Access{Addr: addr, Value: val})
	}
	return val
}

// Write32 implements Bus
func (m *Memory) Write32(addr uintptr, val uint32) {
	m.mu.Lock()
	dev, off := m.lookup(addr)
	trace := m.trace
	if dev == nil {
		m.words[addr] = val
	}
	m.mu.Unlock()

	if dev != nil {
		dev.Write32(off, val)
	}
	if trace != nil {
		trace(Access{Addr: addr, Value: val, Write: true})
	}
}

// Peek reads a plain RAM word without tracing or device dispatch
func (m *Memory) Peek(addr uintptr) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.words[addr]
}

// Poke stores a plain RAM word without tracing or device dispatch
func (m *Memory) Poke(addr uintptr, val uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[addr] = val
}
