// Package monitor reads telemetry frames from a board link and delivers
// the decoded messages
package monitor

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rtl819x/protocol"
)

// Monitor decodes the telemetry stream of one link in a background reader
type Monitor struct {
	port io.ReadCloser
	log  logrus.FieldLogger

	mu       sync.Mutex
	input    *protocol.FifoBuffer
	decoder  *protocol.Decoder
	identify *protocol.Identify
	last     *protocol.Stats
	bad      int

	messages chan interface{}
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// New starts reading port. Decoded messages are delivered on Messages;
// when the consumer falls behind, the oldest undelivered ones are dropped.
func New(port io.ReadCloser, log logrus.FieldLogger) *Monitor {
	m := &Monitor{
		port:     port,
		log:      log,
		input:    protocol.NewFifoBuffer(1024),
		messages: make(chan interface{}, 16),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	m.decoder = protocol.NewDecoder(m.handleFrame)
	go m.readLoop()
	return m
}

// Messages returns the channel decoded *protocol.Stats and
// *protocol.Identify values arrive on. It is closed when the reader stops.
func (m *Monitor) Messages() <-chan interface{} {
	return m.messages
}

// Identify returns the last identify message seen, if any
func (m *Monitor) Identify() *protocol.Identify {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identify
}

// Last returns the most recent stats message, if any
func (m *Monitor) Last() *protocol.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Errors returns how many frames were dropped as corrupt or undecodable
func (m *Monitor) Errors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bad + m.decoder.Dropped()
}

// Done is closed once the reader has stopped
func (m *Monitor) Done() <-chan struct{} {
	return m.doneChan
}

// Close stops the reader and closes the port
func (m *Monitor) Close() error {
	var err error
	m.stopOnce.Do(func() {
		close(m.stopChan)
		err = m.port.Close()
	})
	<-m.doneChan
	return err
}

func (m *Monitor) readLoop() {
	defer close(m.doneChan)
	defer close(m.messages)

	buffer := make([]byte, 256)
	for {
		select {
		case <-m.stopChan:
			return
		default:
		}

		n, err := m.port.Read(buffer)
		if n > 0 {
			m.mu.Lock()
			data := buffer[:n]
			for len(data) > 0 {
				w := m.input.Write(data)
				data = data[w:]
				m.decoder.Receive(m.input)
				if m.input.Free() == 0 {
					// No frame is this long, so the buffer holds garbage
					m.input.Reset()
				}
			}
			m.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-m.stopChan:
				return
			default:
			}
			m.log.WithError(err).Warn("read failed")
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// handleFrame runs with m.mu held
func (m *Monitor) handleFrame(seq uint8, payload []byte) {
	msg, err := protocol.DecodeMessage(payload)
	if err != nil {
		m.bad++
		m.log.WithError(err).WithField("seq", seq).Debug("bad message")
		return
	}
	switch v := msg.(type) {
	case *protocol.Identify:
		m.identify = v
	case *protocol.Stats:
		m.last = v
	}

	for {
		select {
		case m.messages <- msg:
			return
		default:
		}
		select {
		case <-m.messages:
		default:
		}
	}
}
