package mmio

import (
	"errors"
	"testing"
)

func TestMapErrors(t *testing.T) {
	mem := NewMemory()

	tests := []struct {
		name string
		bus  Bus
		base uintptr
		size uintptr
		want error
	}{
		{"nil bus", nil, 0x1000, 0x20, ErrNoBus},
		{"zero base", mem, 0, 0x20, ErrNoMapping},
		{"zero size", mem, 0x1000, 0, ErrNoMapping},
		{"unaligned", mem, 0x1002, 0x20, ErrUnaligned},
	}
	for _, tt := range tests {
		if _, err := Map(tt.bus, tt.base, tt.size); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestWindowReadModifyWrite(t *testing.T) {
	mem := NewMemory()
	w, err := Map(mem, 0xb8003000, 0x18)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	w.Write(0x04, 0xf0f0f0f0)
	w.Set(0x04, 0x0000000f)
	w.Clear(0x04, 0xf0000000)
	if got := mem.Peek(0xb8003004); got != 0x00f0f0ff {
		t.Errorf("Expected 0x00f0f0ff, got %#x", got)
	}

	w.Reg(0x04).Update(0x0000ffff, 0x12341234)
	if got := w.Read(0x04); got != 0x00f01234 {
		t.Errorf("Update: expected 0x00f01234, got %#x", got)
	}
}

func TestWindowOffsetOutOfRangePanics(t *testing.T) {
	w, _ := Map(NewMemory(), 0x1000, 0x8)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for offset past window")
		}
	}()
	w.Read(0x08)
}

func TestPinnedRegister(t *testing.T) {
	mem := NewMemory()

	good, _ := Map(mem, 0xb8003100, 0x20)
	r, ok := good.Pin(0x10, 0xb8003110)
	if !ok || !r.Valid() {
		t.Fatal("Pin at the expected address should be valid")
	}
	r.Write(0xa0000000)
	if got := mem.Peek(0xb8003110); got != 0xa0000000 {
		t.Errorf("Pinned write lost: %#x", got)
	}

	bad, _ := Map(mem, 0xb8003200, 0x20)
	r, ok = bad.Pin(0x10, 0xb8003110)
	if ok || r.Valid() {
		t.Fatal("Pin at a drifted address must yield the null register")
	}

	var writes int
	mem.Trace(func(a Access) {
		if a.Write {
			writes++
		}
	})
	r.Write(0xffffffff)
	r.Set(1)
	if got := r.Read(); got != 0 {
		t.Errorf("Null register read %#x, want 0", got)
	}
	if writes != 0 {
		t.Errorf("Null register reached the bus %d times", writes)
	}
	if got := mem.Peek(0xb8003210); got != 0 {
		t.Errorf("Drifted address was written: %#x", got)
	}
}

type countingDevice struct {
	regs   [4]uint32
	writes int
}

func (d *countingDevice) Read32(off uintptr) uint32 { return d.regs[off/4] }
func (d *countingDevice) Write32(off uintptr, val uint32) {
	d.writes++
	d.regs[off/4] = val
}

func TestMemoryRoutesToDevice(t *testing.T) {
	mem := NewMemory()
	dev := &countingDevice{}
	mem.Attach(0x2000, 0x10, dev)

	Abs(mem, 0x2008).Write(7)
	Abs(mem, 0x3000).Write(9)

	if dev.regs[2] != 7 || dev.writes != 1 {
		t.Errorf("Device did not receive write: regs=%v writes=%d", dev.regs, dev.writes)
	}
	if mem.Peek(0x2008) != 0 {
		t.Error("Device-claimed write leaked into RAM")
	}
	if mem.Peek(0x3000) != 9 {
		t.Error("Unclaimed write did not reach RAM")
	}
}
