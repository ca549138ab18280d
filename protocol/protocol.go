// Package protocol is the telemetry wire format the firmware reports
// interrupt and clock statistics with. Messages are VLQ encoded and carried
// in CRC protected frames:
//
//	len | seq | payload | crc16 (big endian) | 0x7E
//
// len counts the whole frame. The sequence byte carries 0x10 in its high
// bits and a 4-bit counter in its low bits.
package protocol

const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 255
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin

	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	MessageDest    = 0x10
	MessageSeqMask = 0x0F
	MessageScratch = 512 // Scratch buffer, room for two full frames
)

// Message ids, the first VLQ of every payload
const (
	MsgStats    = 1
	MsgIdentify = 2
)
