package protocol

import (
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/spf13/cast"
)

// fixed part of a range record: start(8) length(8) name length(1) colour length(1)
const rangeHeaderSize = 18

// maxText is the longest name or colour a range record can carry.
const maxText = 0xff

type Range struct {
	Start  uint64 `json:"start"`
	Length uint64 `json:"length"`
	Name   string `json:"name,omitempty"`
	Color  string `json:"color,omitempty"`
}

// FromRange reads the name and color payload fields of r.
func FromRange(r *ranges.Range) Range {
	return Range{
		Start:  r.Start,
		Length: r.Length,
		Name:   cast.ToString(r.Payload["name"]),
		Color:  cast.ToString(r.Payload["color"]),
	}
}

// ToRange returns a chart range with name and color as payload fields.
func (r Range) ToRange() *ranges.Range {
	p := map[string]any{"name": r.Name}
	if r.Color != "" {
		p["color"] = r.Color
	}
	return &ranges.Range{Start: r.Start, Length: r.Length, Payload: p}
}

func ToRanges(src []Range) []*ranges.Range {
	out := make([]*ranges.Range, len(src))
	for i := range src {
		out[i] = src[i].ToRange()
	}
	return out
}

func (r Range) encodeSize() int {
	return rangeHeaderSize + min(len(r.Name), maxText) + min(len(r.Color), maxText)
}

func rangesEncodeSize(rs []Range) int {
	n := 0
	for i := range rs {
		n += rs[i].encodeSize()
	}
	return n
}

func putUint64(dest []byte, v uint64) {
	for i := range 8 {
		dest[i] = byte(v >> (56 - 8*i))
	}
}

func getUint64(src []byte) uint64 {
	var v uint64
	for i := range 8 {
		v = v<<8 | uint64(src[i])
	}
	return v
}

func putUint32(dest []byte, v uint32) {
	dest[0] = byte(v >> 24)
	dest[1] = byte(v >> 16)
	dest[2] = byte(v >> 8)
	dest[3] = byte(v)
}

func getUint32(src []byte) uint32 {
	return uint32(src[0])<<24 | uint32(src[1])<<16 | uint32(src[2])<<8 | uint32(src[3])
}

// putText writes a length-prefixed string, cut to maxText bytes, and returns
// the bytes written.
func putText(dest []byte, s string) int {
	if len(s) > maxText {
		s = s[:maxText]
	}
	dest[0] = byte(len(s))
	copy(dest[1:], s)
	return 1 + len(s)
}

func encodeRanges(src []Range, dest []byte, destOffset int) int {
	dsti := destOffset
	for i := range src {
		r := &src[i]
		putUint64(dest[dsti:], r.Start)
		dsti += 8
		putUint64(dest[dsti:], r.Length)
		dsti += 8
		dsti += putText(dest[dsti:], r.Name)
		dsti += putText(dest[dsti:], r.Color)
	}
	return dsti
}

func decodeRanges(src []byte, dest []Range, srcOffset int) error {
	srci := srcOffset
	for i := range dest {
		if len(src) < srci+rangeHeaderSize {
			return ErrLengthMismatch
		}
		start := getUint64(src[srci:])
		srci += 8
		length := getUint64(src[srci:])
		srci += 8

		var texts [2]string
		for t := range texts {
			if len(src) <= srci {
				return ErrLengthMismatch
			}
			n := int(src[srci])
			srci += 1
			if len(src) < srci+n {
				return ErrLengthMismatch
			}
			texts[t] = string(src[srci : srci+n])
			srci += n
		}

		dest[i] = Range{Start: start, Length: length, Name: texts[0], Color: texts[1]}
	}
	return nil
}
