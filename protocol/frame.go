package protocol

import "errors"

var ErrFrameTooLarge = errors.New("protocol: payload exceeds frame size")

// Encoder frames payloads onto an OutputBuffer. Each frame takes the next
// sequence number.
type Encoder struct {
	output OutputBuffer
	seq    uint8
}

// NewEncoder creates an Encoder writing to output
func NewEncoder(output OutputBuffer) *Encoder {
	return &Encoder{output: output}
}

// Seq returns the sequence byte the next frame will carry
func (e *Encoder) Seq() uint8 {
	return MessageDest | e.seq&MessageSeqMask
}

// EncodeFrame writes one frame whose payload is produced by body. On
// ErrFrameTooLarge the output is left holding an unterminated frame, which
// a Decoder skips.
func (e *Encoder) EncodeFrame(body func(output OutputBuffer)) error {
	cursor := e.output.CurPosition()
	e.output.Output([]byte{0, e.Seq()})
	body(e.output)

	n := len(e.output.DataSince(cursor))
	if n+MessageTrailerSize > MessageLengthMax {
		return ErrFrameTooLarge
	}
	e.output.Update(cursor, uint8(n+MessageTrailerSize))

	crc := CRC16(e.output.DataSince(cursor))
	e.output.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
	e.seq++
	return nil
}

// FrameHandler receives the sequence byte and payload of each good frame.
// payload aliases the input and is only valid during the call.
type FrameHandler func(seq uint8, payload []byte)

// Decoder extracts frames from a byte stream. A bad length, sequence byte,
// trailer or checksum drops the decoder out of sync; it then discards
// input up to the next sync byte.
type Decoder struct {
	handler FrameHandler
	synced  bool
	dropped int
}

// NewDecoder creates a Decoder calling handler for each good frame
func NewDecoder(handler FrameHandler) *Decoder {
	return &Decoder{handler: handler, synced: true}
}

// Dropped returns how many times the decoder lost sync
func (d *Decoder) Dropped() int {
	return d.dropped
}

func (d *Decoder) desync() {
	d.synced = false
	d.dropped++
}

// Receive consumes every complete frame in input. A trailing partial
// frame stays queued for the next call.
func (d *Decoder) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synced {
			i := 0
			for i < len(data) && data[i] != MessageValueSync {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			d.synced = true
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		n := int(data[MessagePositionLen])
		seq := data[MessagePositionSeq]
		if n < MessageLengthMin || seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}
		if len(data) < n {
			break
		}
		if data[n-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}
		crc := uint16(data[n-MessageTrailerCRC])<<8 | uint16(data[n-MessageTrailerCRC+1])
		if crc != CRC16(data[:n-MessageTrailerSize]) {
			d.desync()
			continue
		}

		if d.handler != nil {
			d.handler(seq, data[MessageHeaderSize:n-MessageTrailerSize])
		}
		data = data[n:]
	}

	if consumed := input.Available() - len(data); consumed > 0 {
		input.Pop(consumed)
	}
}
