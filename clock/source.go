// Package clock is the registration framework for clock sources, clock
// event devices and the scheduler clock.
package clock

import (
	"errors"

	"rtl819x/core"
)

var (
	ErrInvalid     = errors.New("clock: invalid parameters")
	ErrExists      = errors.New("clock: name already registered")
	ErrUnsupported = errors.New("clock: mode not supported by device")
)

const component = "clock"

// Flags describes clock source properties
type Flags uint32

const (
	// SourceContinuous marks a source that keeps counting through idle
	SourceContinuous Flags = 1 << iota
)

// Mask returns a counter mask bits wide
func Mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

// Source is a free-running counter that can be read at any time.
// Read values wrap at Mask.
type Source interface {
	Name() string
	Read() uint64
	Mask() uint64
	Rating() int
	Flags() Flags
}

type registeredSource struct {
	src Source
	hz  uint32
}

// Registry tracks registered clock sources and selects the highest rated
// one as the current time base. Registration happens during init only.
type Registry struct {
	sources []registeredSource
	current int
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{current: -1}
}

// RegisterHz adds src counting at hz. The current source changes only when
// src is rated strictly higher.
func (r *Registry) RegisterHz(src Source, hz uint32) error {
	if src == nil || hz == 0 || src.Mask() == 0 {
		return ErrInvalid
	}
	if _, _, ok := r.Lookup(src.Name()); ok {
		return ErrExists
	}

	r.sources = append(r.sources, registeredSource{src: src, hz: hz})
	if r.current < 0 || src.Rating() > r.sources[r.current].src.Rating() {
		r.current = len(r.sources) - 1
		core.Info(component, "clocksource: switched to "+src.Name())
	}
	return nil
}

// Current returns the selected source and its rate
func (r *Registry) Current() (Source, uint32, bool) {
	if r.current < 0 {
		return nil, 0, false
	}
	s := r.sources[r.current]
	return s.src, s.hz, true
}

// Lookup returns the source registered under name
func (r *Registry) Lookup(name string) (Source, uint32, bool) {
	for _, s := range r.sources {
		if s.src.Name() == name {
			return s.src, s.hz, true
		}
	}
	return nil, 0, false
}

// Len returns the number of registered sources
func (r *Registry) Len() int { return len(r.sources) }
