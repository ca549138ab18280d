package monitor

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"rtl819x/protocol"
)

func frames(t *testing.T, msgs ...interface{}) []byte {
	t.Helper()
	out := protocol.NewScratchOutput()
	enc := protocol.NewEncoder(out)
	for _, msg := range msgs {
		var err error
		switch v := msg.(type) {
		case *protocol.Stats:
			err = enc.EncodeFrame(func(o protocol.OutputBuffer) { protocol.EncodeStats(o, v) })
		case *protocol.Identify:
			err = enc.EncodeFrame(func(o protocol.OutputBuffer) { protocol.EncodeIdentify(o, v) })
		}
		if err != nil {
			t.Fatalf("EncodeFrame failed: %v", err)
		}
	}
	return append([]byte(nil), out.Result()...)
}

func next(t *testing.T, m *Monitor) interface{} {
	t.Helper()
	select {
	case msg, ok := <-m.Messages():
		if !ok {
			t.Fatal("Messages closed early")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a message")
	}
	return nil
}

func TestMonitorDecodesStream(t *testing.T) {
	pr, pw := io.Pipe()
	logger, _ := test.NewNullLogger()
	m := New(pr, logger)
	defer m.Close()

	id := &protocol.Identify{SystemType: "RTL8198 (Rev.1)", DRAM: 32 << 20}
	stats := &protocol.Stats{Seq: 1, Clock: 12345, Hz: 100000000, Counts: []protocol.IRQCount{{IRQ: 16, Count: 7}}}
	stream := frames(t, id, stats)

	// Split mid-frame and prefix garbage to exercise resync
	go func() {
		pw.Write([]byte{0x01, 0x02, protocol.MessageValueSync})
		pw.Write(stream[:5])
		pw.Write(stream[5:])
	}()

	if got, ok := next(t, m).(*protocol.Identify); !ok || *got != *id {
		t.Errorf("First message %+v", got)
	}
	got, ok := next(t, m).(*protocol.Stats)
	if !ok || got.Clock != 12345 || len(got.Counts) != 1 || got.Counts[0].Count != 7 {
		t.Errorf("Second message %+v", got)
	}
	if m.Identify() == nil || m.Last() == nil || m.Last().Seq != 1 {
		t.Error("Latest messages not retained")
	}
	if m.Errors() != 1 {
		t.Errorf("Errors = %d, want 1 for the garbage prefix", m.Errors())
	}
}

func TestMonitorStopsAtEOF(t *testing.T) {
	pr, pw := io.Pipe()
	logger, _ := test.NewNullLogger()
	m := New(pr, logger)

	pw.Close()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Reader did not stop at EOF")
	}
	if _, ok := <-m.Messages(); ok {
		t.Error("Messages not closed")
	}
	m.Close()
}

func TestMonitorCountsBadMessages(t *testing.T) {
	pr, pw := io.Pipe()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := New(pr, logger)
	defer m.Close()

	out := protocol.NewScratchOutput()
	enc := protocol.NewEncoder(out)
	enc.EncodeFrame(func(o protocol.OutputBuffer) { o.Output([]byte{0x7f}) })
	stream := append(append([]byte(nil), out.Result()...), frames(t, &protocol.Identify{})...)
	go pw.Write(stream)

	next(t, m)
	if m.Errors() != 1 {
		t.Errorf("Errors = %d, want 1", m.Errors())
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("Bad message not logged")
	}
}
