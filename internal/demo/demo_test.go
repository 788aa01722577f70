package demo

import (
	"testing"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetIsDeterministic(t *testing.T) {
	a := Dataset("demo")
	b := Dataset("demo")
	assert.Equal(t, a, b)
	assert.Equal(t, Order, a.Order)
	assert.Greater(t, len(a.Ranges), 256)
}

func TestDatasetFitsCurve(t *testing.T) {
	d := Dataset("demo")
	curve, err := hilbert.NewCurve(d.Order, 512)
	require.NoError(t, err)
	for _, r := range d.Ranges {
		require.NoError(t, curve.Validate(r.ToRange()))
	}
	assert.Equal(t, protocol.Range{Start: 0, Length: 1 << 24, Name: "0.0.0.0/8 reserved", Color: "#c7c7c7"}, d.Ranges[0])
}

func TestDatasetDoesNotOverlap(t *testing.T) {
	d := Dataset("demo")
	for i := 1; i < len(d.Ranges); i++ {
		prev, cur := d.Ranges[i-1], d.Ranges[i]
		assert.LessOrEqual(t, prev.Start+prev.Length, cur.Start, "%s overlaps %s", prev.Name, cur.Name)
	}
}
