package protocol

import (
	"reflect"
	"testing"
)

func TestStatsMessage(t *testing.T) {
	in := &Stats{
		Seq:      42,
		Clock:    0x1_0000_0005,
		Hz:       100_000_000,
		Spurious: 3,
		Counts:   []IRQCount{{IRQ: 7, Count: 1000}, {IRQ: 24, Count: 0}},
	}
	out := NewScratchOutput()
	EncodeStats(out, in)

	msg, err := DecodeMessage(out.Result())
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	got, ok := msg.(*Stats)
	if !ok {
		t.Fatalf("Decoded %T, want *Stats", msg)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Decoded %+v, want %+v", got, in)
	}
}

func TestStatsCountsCapped(t *testing.T) {
	in := &Stats{Counts: make([]IRQCount, MaxIRQCounts+8)}
	out := NewScratchOutput()
	EncodeStats(out, in)

	msg, err := DecodeMessage(out.Result())
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	if n := len(msg.(*Stats).Counts); n != MaxIRQCounts {
		t.Errorf("Sent %d counts, want %d", n, MaxIRQCounts)
	}
}

func TestIdentifyMessage(t *testing.T) {
	in := &Identify{SystemType: "RTL8196E (Rev.1)", DRAM: 64 << 20}
	out := NewScratchOutput()
	EncodeIdentify(out, in)

	msg, err := DecodeMessage(out.Result())
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	if got, ok := msg.(*Identify); !ok || *got != *in {
		t.Errorf("Decoded %+v, want %+v", msg, in)
	}
}

func TestDecodeMessageErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"empty", nil, ErrBufferTooSmall},
		{"unknown id", []byte{9}, ErrUnknownMessage},
		{"truncated stats", []byte{MsgStats, 1}, ErrBufferTooSmall},
		{"too many counts", []byte{MsgStats, 0, 0, 0, 0, 0, 0x80, 0x21}, ErrTooManyCounts},
		{"truncated identify", []byte{MsgIdentify, 4, 'R', 'T'}, ErrBufferTooSmall},
	}
	for _, tt := range tests {
		if _, err := DecodeMessage(tt.payload); err != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestStatsFitInOneFrame(t *testing.T) {
	in := &Stats{Seq: ^uint32(0), Clock: ^uint64(0), Hz: ^uint32(0), Spurious: ^uint32(0)}
	for i := 0; i < MaxIRQCounts; i++ {
		in.Counts = append(in.Counts, IRQCount{IRQ: ^uint32(0), Count: ^uint32(0)})
	}
	enc := NewEncoder(NewScratchOutput())
	if err := enc.EncodeFrame(func(o OutputBuffer) { EncodeStats(o, in) }); err != nil {
		t.Errorf("Largest stats message does not fit: %v", err)
	}
}
