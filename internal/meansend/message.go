// Package meansend implements the means-to-an-end protocol: clients insert
// timestamped prices and query the mean price over a time range, each on
// their own private database.
package meansend

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MessageSize is the fixed length of every client message.
	MessageSize = 9
	// ResponseSize is the length of a query response.
	ResponseSize = 4
)

type typ byte

const (
	MsgInsert typ = 'I'
	MsgQuery  typ = 'Q'
)

// ErrInvalidMessageType is returned by Decode for a type byte other than 'I'
// or 'Q'.
var ErrInvalidMessageType = errors.New("message type must be 'I' or 'Q'")

// Message is either an Insert or a Query.
type Message interface {
	msgType() typ
	operands() (int32, int32)
}

// Insert stores price at timestamp.
type Insert struct {
	Timestamp int32
	Price     int32
}

func (Insert) msgType() typ { return MsgInsert }
func (m Insert) operands() (int32, int32) { return m.Timestamp, m.Price }

// Query asks for the mean price with MinTime <= timestamp <= MaxTime.
type Query struct {
	MinTime int32
	MaxTime int32
}

func (Query) msgType() typ { return MsgQuery }
func (m Query) operands() (int32, int32) { return m.MinTime, m.MaxTime }

// Decode parses one message. Both operands are big-endian signed 32-bit
// integers.
func Decode(b [MessageSize]byte) (Message, error) {
	first := int32(binary.BigEndian.Uint32(b[1:5]))
	second := int32(binary.BigEndian.Uint32(b[5:9]))

	switch typ(b[0]) {
	case MsgInsert:
		return Insert{Timestamp: first, Price: second}, nil
	case MsgQuery:
		return Query{MinTime: first, MaxTime: second}, nil
	default:
		return nil, fmt.Errorf("%w: got 0x%02x", ErrInvalidMessageType, b[0])
	}
}

// Encode is the inverse of Decode.
func Encode(m Message) [MessageSize]byte {
	var b [MessageSize]byte
	first, second := m.operands()
	b[0] = byte(m.msgType())
	binary.BigEndian.PutUint32(b[1:5], uint32(first))
	binary.BigEndian.PutUint32(b[5:9], uint32(second))
	return b
}

// EncodeMean encodes a query response.
func EncodeMean(mean int32) [ResponseSize]byte {
	var b [ResponseSize]byte
	binary.BigEndian.PutUint32(b[:], uint32(mean))
	return b
}
