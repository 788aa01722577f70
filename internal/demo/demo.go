// Package demo builds a deterministic dataset shaped like IPv4 address
// allocations, laid out on an order 16 curve (one cell per address).
package demo

import (
	"fmt"
	"math/rand/v2"

	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
)

const (
	Order = 16

	slash8  = 1 << 24
	slash16 = 1 << 16
	slash24 = 1 << 8
)

var registries = []string{"ARIN", "RIPE NCC", "APNIC", "LACNIC", "AFRINIC"}

// Dataset returns the demo allocations under the given name. The same name
// always yields the same ranges.
func Dataset(name string) *database.Dataset {
	rng := rand.New(rand.NewPCG(0x68696c62, 0x65727421))
	d := &database.Dataset{Name: name, Order: Order}

	for block := range 256 {
		start := uint64(block) * slash8
		switch {
		case block == 0 || block == 127 || block >= 224:
			d.Ranges = append(d.Ranges, protocol.Range{
				Start: start, Length: slash8,
				Name: fmt.Sprintf("%d.0.0.0/8 reserved", block), Color: "#c7c7c7",
			})
		case block%3 == 0:
			d.Ranges = append(d.Ranges, protocol.Range{
				Start: start, Length: slash8,
				Name: fmt.Sprintf("%d.0.0.0/8 %s", block, registries[rng.IntN(len(registries))]),
			})
		case block%3 == 1:
			d.Ranges = append(d.Ranges, subAllocations(rng, block, start)...)
		}
	}
	return d
}

// subAllocations fills a /8 with scattered /16 and /24 blocks.
func subAllocations(rng *rand.Rand, block int, start uint64) []protocol.Range {
	var out []protocol.Range
	for sub := range 256 {
		if rng.IntN(8) != 0 {
			continue
		}
		s := start + uint64(sub)*slash16
		if rng.IntN(4) == 0 {
			third := rng.IntN(256)
			out = append(out, protocol.Range{
				Start:  s + uint64(third)*slash24,
				Length: slash24,
				Name:   fmt.Sprintf("%d.%d.%d.0/24", block, sub, third),
			})
			continue
		}
		out = append(out, protocol.Range{
			Start:  s,
			Length: slash16,
			Name:   fmt.Sprintf("%d.%d.0.0/16 AS%d", block, sub, 1000+rng.IntN(64000)),
		})
	}
	return out
}
