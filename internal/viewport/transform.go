// Package viewport owns the zoom/pan transform of a chart.
package viewport

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// Transform maps unzoomed canvas points to screen points:
// screen = canvas*K + (X, Y).
type Transform struct {
	K, X, Y float64
}

var Identity = Transform{K: 1}

// Apply maps a canvas point to the screen.
func (t Transform) Apply(px, py float64) (sx, sy float64) {
	return px*t.K + t.X, py*t.K + t.Y
}

// Invert maps a screen point back to the canvas.
func (t Transform) Invert(sx, sy float64) (px, py float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// Aff3 returns the transform as an affine matrix.
func (t Transform) Aff3() f64.Aff3 {
	return f64.Aff3{
		t.K, 0, t.X,
		0, t.K, t.Y,
	}
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

func lerp(a, b Transform, p float64) Transform {
	return Transform{
		K: a.K + (b.K-a.K)*p,
		X: a.X + (b.X-a.X)*p,
		Y: a.Y + (b.Y-a.Y)*p,
	}
}

// Window is the visible part of the canvas in unzoomed canvas pixels.
type Window struct {
	X0, Y0, X1, Y1 float64
}

func (w Window) Width() float64  { return w.X1 - w.X0 }
func (w Window) Height() float64 { return w.Y1 - w.Y0 }

// Intersects reports whether the rectangle [x0,x1)×[y0,y1) overlaps w.
func (w Window) Intersects(x0, y0, x1, y1 float64) bool {
	return x0 < w.X1 && x1 > w.X0 && y0 < w.Y1 && y1 > w.Y0
}
