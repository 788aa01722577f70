package protocol

import (
	"fmt"
)

// order(1) focus(8+8+2) ranges count(4) name length(1)
const nameOffset = 24

// Output is the dataset state pushed to viewers. Focus.Length is zero unless
// the update carries a focus request.
type Output struct {
	Name        string
	Order       uint8
	Focus       Focus
	RangesCount uint32
	Ranges      []Range
}

func (o *Output) Encode(b []byte) {
	b[0] = o.Order

	putUint64(b[1:], o.Focus.Start)
	putUint64(b[9:], o.Focus.Length)
	b[17] = byte(o.Focus.DurationMs >> 8)
	b[18] = byte(o.Focus.DurationMs & 0xff)

	putUint32(b[19:], o.RangesCount)

	n := putText(b[nameOffset-1:], o.Name)
	encodeRanges(o.Ranges[:o.RangesCount], b, nameOffset-1+n)
}

func (o *Output) EncodeSize() int {
	return nameOffset + min(len(o.Name), maxText) + rangesEncodeSize(o.Ranges[:o.RangesCount])
}

func (o *Output) Decode(b []byte) error {
	l := len(b)
	if l < nameOffset {
		return ErrTooShort
	}
	o.Order = b[0]
	o.Focus.Start = getUint64(b[1:])
	o.Focus.Length = getUint64(b[9:])
	o.Focus.DurationMs = uint16(b[17])<<8 | uint16(b[18])
	o.RangesCount = getUint32(b[19:])

	n := int(b[nameOffset-1])
	if l < nameOffset+n {
		return fmt.Errorf("name: %w", ErrTooShort)
	}
	o.Name = string(b[nameOffset : nameOffset+n])

	rest := l - nameOffset - n
	if uint64(rest) < uint64(o.RangesCount)*rangeHeaderSize {
		return ErrLengthMismatch
	}
	o.Ranges = make([]Range, o.RangesCount)
	return decodeRanges(b, o.Ranges, nameOffset+n)
}
