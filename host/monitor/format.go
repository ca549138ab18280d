package monitor

import (
	"fmt"
	"strings"

	"rtl819x/protocol"
)

// Format renders a decoded message as one line of text
func Format(msg interface{}) string {
	switch v := msg.(type) {
	case *protocol.Identify:
		return fmt.Sprintf("board %s, %d MiB DRAM", v.SystemType, v.DRAM>>20)
	case *protocol.Stats:
		var b strings.Builder
		fmt.Fprintf(&b, "stats #%d t=", v.Seq)
		if v.Hz != 0 {
			fmt.Fprintf(&b, "%.6fs", float64(v.Clock)/float64(v.Hz))
		} else {
			fmt.Fprintf(&b, "%d", v.Clock)
		}
		fmt.Fprintf(&b, " spurious=%d", v.Spurious)
		for _, c := range v.Counts {
			fmt.Fprintf(&b, " irq%d=%d", c.IRQ, c.Count)
		}
		return b.String()
	}
	return fmt.Sprintf("unknown message %T", msg)
}
