package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrTooShort       = errors.New("too short")
	ErrLengthMismatch = errors.New("byte length does not match ranges count")
)

type clientMessageType uint8

const (
	setRanges clientMessageType = iota
	appendRanges
	focus
	setOrder
)

type ClientMessage interface {
	Encode() []byte
	decode([]byte) error
}

func DecodeClientMessage(b []byte) (ClientMessage, error) {
	if len(b) == 0 {
		return nil, ErrEmptyMessage
	}
	var msg ClientMessage
	switch b[0] {
	case byte(setRanges):
		msg = &SetRanges{}
	case byte(appendRanges):
		msg = &AppendRanges{}
	case byte(focus):
		msg = &Focus{}
	case byte(setOrder):
		msg = &SetOrder{}
	default:
		return nil, fmt.Errorf("unknown client message type: %d", b[0])
	}
	err := msg.decode(b)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// SetRanges replaces every range of the dataset.
type SetRanges struct {
	Ranges []Range
}

func (sr *SetRanges) Encode() []byte {
	return encodeRangesMessage(setRanges, sr.Ranges)
}

func (sr *SetRanges) decode(b []byte) error {
	rs, err := decodeRangesMessage(b)
	if err != nil {
		return fmt.Errorf("[SetRanges] %w", err)
	}
	sr.Ranges = rs
	return nil
}

// AppendRanges adds ranges after the existing ones.
type AppendRanges struct {
	Ranges []Range
}

func (ar *AppendRanges) Encode() []byte {
	return encodeRangesMessage(appendRanges, ar.Ranges)
}

func (ar *AppendRanges) decode(b []byte) error {
	rs, err := decodeRangesMessage(b)
	if err != nil {
		return fmt.Errorf("[AppendRanges] %w", err)
	}
	ar.Ranges = rs
	return nil
}

func encodeRangesMessage(t clientMessageType, rs []Range) []byte {
	b := make([]byte, 5+rangesEncodeSize(rs))
	b[0] = byte(t)
	putUint32(b[1:], uint32(len(rs)))
	encodeRanges(rs, b, 5)
	return b
}

func decodeRangesMessage(b []byte) ([]Range, error) {
	if len(b) < 5 {
		return nil, ErrTooShort
	}
	count := getUint32(b[1:])
	if uint64(len(b)-5) < uint64(count)*rangeHeaderSize {
		return nil, ErrLengthMismatch
	}
	rs := make([]Range, count)
	if err := decodeRanges(b, rs, 5); err != nil {
		return nil, err
	}
	return rs, nil
}

// Focus asks every viewer to zoom onto [Start, Start+Length). A zero
// DurationMs jumps without animating.
type Focus struct {
	Start, Length uint64
	DurationMs    uint16
}

func (f *Focus) Encode() []byte {
	b := make([]byte, 19)
	b[0] = byte(focus)
	putUint64(b[1:], f.Start)
	putUint64(b[9:], f.Length)
	b[17] = byte(f.DurationMs >> 8)
	b[18] = byte(f.DurationMs & 0xff)
	return b
}

func (f *Focus) decode(b []byte) error {
	if len(b) < 19 {
		return fmt.Errorf("[Focus] %w", ErrTooShort)
	}
	f.Start = getUint64(b[1:])
	f.Length = getUint64(b[9:])
	f.DurationMs = uint16(b[17])<<8 | uint16(b[18])
	return nil
}

type SetOrder struct {
	Order uint8
}

func (so *SetOrder) Encode() []byte {
	return []byte{byte(setOrder), so.Order}
}

func (so *SetOrder) decode(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("[SetOrder] %w", ErrTooShort)
	}
	so.Order = b[1]
	return nil
}
