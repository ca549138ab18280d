package protocol

import "errors"

// MaxIRQCounts bounds the per-interrupt entries one stats message carries,
// keeping the largest message inside one frame
const MaxIRQCounts = 16

var (
	ErrUnknownMessage = errors.New("protocol: unknown message id")
	ErrTooManyCounts  = errors.New("protocol: too many irq counts")
)

// IRQCount is the dispatch count of one virtual interrupt
type IRQCount struct {
	IRQ   uint32
	Count uint32
}

// Stats is the periodic report of the interrupt and clock state
type Stats struct {
	Seq      uint32 // Report number, increments per report
	Clock    uint64 // Scheduler clock at the time of the report
	Hz       uint32 // Scheduler clock rate
	Spurious uint32
	Counts   []IRQCount
}

// Identify describes the board, sent once after setup
type Identify struct {
	SystemType string
	DRAM       uint64 // Bytes
}

// EncodeStats writes s as a stats payload. Counts past MaxIRQCounts are
// not sent.
func EncodeStats(output OutputBuffer, s *Stats) {
	EncodeVLQUint(output, MsgStats)
	EncodeVLQUint(output, s.Seq)
	EncodeVLQUint64(output, s.Clock)
	EncodeVLQUint(output, s.Hz)
	EncodeVLQUint(output, s.Spurious)

	counts := s.Counts
	if len(counts) > MaxIRQCounts {
		counts = counts[:MaxIRQCounts]
	}
	EncodeVLQUint(output, uint32(len(counts)))
	for _, c := range counts {
		EncodeVLQUint(output, c.IRQ)
		EncodeVLQUint(output, c.Count)
	}
}

func decodeStats(data *[]byte) (*Stats, error) {
	s := &Stats{}
	var err error
	if s.Seq, err = DecodeVLQUint(data); err != nil {
		return nil, err
	}
	if s.Clock, err = DecodeVLQUint64(data); err != nil {
		return nil, err
	}
	if s.Hz, err = DecodeVLQUint(data); err != nil {
		return nil, err
	}
	if s.Spurious, err = DecodeVLQUint(data); err != nil {
		return nil, err
	}
	n, err := DecodeVLQUint(data)
	if err != nil {
		return nil, err
	}
	if n > MaxIRQCounts {
		return nil, ErrTooManyCounts
	}
	s.Counts = make([]IRQCount, n)
	for i := range s.Counts {
		if s.Counts[i].IRQ, err = DecodeVLQUint(data); err != nil {
			return nil, err
		}
		if s.Counts[i].Count, err = DecodeVLQUint(data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// EncodeIdentify writes id as an identify payload
func EncodeIdentify(output OutputBuffer, id *Identify) {
	EncodeVLQUint(output, MsgIdentify)
	EncodeVLQString(output, id.SystemType)
	EncodeVLQUint64(output, id.DRAM)
}

func decodeIdentify(data *[]byte) (*Identify, error) {
	id := &Identify{}
	var err error
	if id.SystemType, err = DecodeVLQString(data); err != nil {
		return nil, err
	}
	if id.DRAM, err = DecodeVLQUint64(data); err != nil {
		return nil, err
	}
	return id, nil
}

// DecodeMessage decodes one payload into a *Stats or *Identify
func DecodeMessage(payload []byte) (interface{}, error) {
	data := payload
	msg, err := DecodeVLQUint(&data)
	if err != nil {
		return nil, err
	}
	switch msg {
	case MsgStats:
		return decodeStats(&data)
	case MsgIdentify:
		return decodeIdentify(&data)
	}
	return nil, ErrUnknownMessage
}
