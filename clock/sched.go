package clock

import "sync/atomic"

type schedBinding struct {
	read func() uint64
	mask uint64
	hz   uint32
}

// SchedClock is the scheduler's fast time read. It binds to the first
// counter registered and ignores every later registration.
type SchedClock struct {
	b atomic.Pointer[schedBinding]
}

// Register binds read, a counter bits wide running at hz. Returns false
// if a counter was already bound.
func (s *SchedClock) Register(read func() uint64, bits uint, hz uint32) bool {
	if read == nil || bits == 0 || hz == 0 {
		return false
	}
	return s.b.CompareAndSwap(nil, &schedBinding{read: read, mask: Mask(bits), hz: hz})
}

// Bound reports whether a counter has been registered
func (s *SchedClock) Bound() bool {
	return s.b.Load() != nil
}

// Read returns the bound counter's value, or 0 before binding
func (s *SchedClock) Read() uint64 {
	b := s.b.Load()
	if b == nil {
		return 0
	}
	return b.read() & b.mask
}

// Hz returns the bound counter's rate, or 0 before binding
func (s *SchedClock) Hz() uint32 {
	b := s.b.Load()
	if b == nil {
		return 0
	}
	return b.hz
}

// Mask returns the bound counter's wrap mask, or 0 before binding
func (s *SchedClock) Mask() uint64 {
	b := s.b.Load()
	if b == nil {
		return 0
	}
	return b.mask
}

// Epoch extends the scheduler clock to 64 bits. Now must be called at
// least once per wrap of the underlying counter.
type Epoch struct {
	clock *SchedClock
	last  uint64
	base  uint64
}

// NewEpoch returns an Epoch over s starting from its current value
func NewEpoch(s *SchedClock) *Epoch {
	return &Epoch{clock: s, last: s.Read()}
}

// Now returns the extended clock value
func (e *Epoch) Now() uint64 {
	now := e.clock.Read()
	if now < e.last {
		e.base += e.clock.Mask() + 1
	}
	e.last = now
	return e.base + now
}
