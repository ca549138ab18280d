package monitor

import (
	"testing"

	"rtl819x/protocol"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		msg  interface{}
		want string
	}{
		{
			&protocol.Identify{SystemType: "RTL8196E (Rev.1)", DRAM: 64 << 20},
			"board RTL8196E (Rev.1), 64 MiB DRAM",
		},
		{
			&protocol.Stats{Seq: 3, Clock: 150000000, Hz: 100000000, Spurious: 2,
				Counts: []protocol.IRQCount{{IRQ: 16, Count: 150}, {IRQ: 18, Count: 4}}},
			"stats #3 t=1.500000s spurious=2 irq16=150 irq18=4",
		},
		{&protocol.Stats{Clock: 42}, "stats #0 t=42 spurious=0"},
		{42, "unknown message int"},
	}
	for _, tt := range tests {
		if got := Format(tt.msg); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}
