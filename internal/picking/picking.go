// Package picking resolves pixels of an off-screen id buffer back to ranges.
//
// Every range drawn in a raster pass gets an opaque colour. The low bits of
// the colour carry a checksum of the id, so pixels blended at shape edges
// fail validation instead of resolving to an unrelated range. The more ids a
// pass needs, the fewer checksum bits are kept.
package picking

import (
	"errors"
	"image"
	"image/color"
	"math/bits"

	"github.com/JackWithOneEye/hilbertchart/internal/logging"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
)

// ErrPickingExhausted is logged when a pass registers more ranges than the
// index can tell apart. The excess ranges are simply not pickable.
var ErrPickingExhausted = errors.New("picking ids exhausted")

const (
	colorBits       = 24
	maxChecksumBits = 6
)

type Index struct {
	checksumBits uint
	capacity     int
	registry     []*ranges.Range
	generation   uint64
	exhausted    bool
}

// NewIndex returns an index tiered for about expected ids per pass.
func NewIndex(expected int) *Index {
	ix := &Index{}
	ix.Resize(expected)
	return ix
}

// Resize re-tiers the index for expected ids and starts a new pass.
func (ix *Index) Resize(expected int) {
	idBits := uint(bits.Len(uint(max(expected, 1))))
	cs := uint(0)
	if idBits < colorBits {
		cs = min(colorBits-idBits, maxChecksumBits)
	}
	ix.checksumBits = cs
	ix.capacity = 1<<(colorBits-cs) - 1
	ix.Reset()
}

// Capacity returns how many distinct ids one pass supports.
func (ix *Index) Capacity() int {
	return ix.capacity
}

// ChecksumBits returns the number of colour bits spent on validation.
func (ix *Index) ChecksumBits() uint {
	return ix.checksumBits
}

// Generation identifies the current pass.
func (ix *Index) Generation() uint64 {
	return ix.generation
}

// Len returns the number of ids handed out in the current pass.
func (ix *Index) Len() int {
	return len(ix.registry)
}

// Reset forgets every id and starts a new pass. Colours handed out before
// the reset never resolve again, even though they will be reused.
func (ix *Index) Reset() {
	clear(ix.registry)
	ix.registry = ix.registry[:0]
	ix.generation++
	ix.exhausted = false
}

// Register allocates the next colour of the pass for r. It returns false
// once the capacity is used up.
func (ix *Index) Register(r *ranges.Range) (color.RGBA, bool) {
	if len(ix.registry) >= ix.capacity {
		if !ix.exhausted {
			ix.exhausted = true
			logging.Logger().Warn("picking degraded", "error", ErrPickingExhausted, "capacity", ix.capacity)
		}
		return color.RGBA{}, false
	}
	ix.registry = append(ix.registry, r)
	id := uint32(len(ix.registry))
	n := id<<ix.checksumBits | ix.checksum(id)
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}

// Lookup returns the range registered under c in the current pass, or nil.
func (ix *Index) Lookup(c color.RGBA) *ranges.Range {
	if c.A != 0xff {
		return nil
	}
	n := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	id := n >> ix.checksumBits
	if id == 0 || int(id) > len(ix.registry) {
		return nil
	}
	if n&(1<<ix.checksumBits-1) != ix.checksum(id) {
		return nil
	}
	return ix.registry[id-1]
}

// Pick resolves the pixel (x, y) of b. Buffers drawn in an earlier pass
// resolve to nil.
func (ix *Index) Pick(b *Buffer, x, y int) *ranges.Range {
	if b == nil || b.generation != ix.generation {
		return nil
	}
	if !(image.Point{X: x, Y: y}).In(b.img.Rect) {
		return nil
	}
	return ix.Lookup(b.img.RGBAAt(x, y))
}

func (ix *Index) checksum(id uint32) uint32 {
	if ix.checksumBits == 0 {
		return 0
	}
	h := id * 0x9e3779b1
	return (h >> (32 - ix.checksumBits)) & (1<<ix.checksumBits - 1)
}

// Buffer is the off-screen id image of one pass.
type Buffer struct {
	img        *image.RGBA
	generation uint64
}

func NewBuffer(width, height int) *Buffer {
	return &Buffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Begin clears the buffer and binds it to the current pass of ix.
func (b *Buffer) Begin(ix *Index) {
	clear(b.img.Pix)
	b.generation = ix.generation
}

func (b *Buffer) Image() *image.RGBA {
	return b.img
}

func (b *Buffer) Generation() uint64 {
	return b.generation
}

// Set writes c at (x, y) without blending.
func (b *Buffer) Set(x, y int, c color.RGBA) {
	b.img.SetRGBA(x, y, c)
}
