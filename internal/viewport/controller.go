package viewport

import (
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
)

// FocusSamples is the number of interior points sampled by FocusOn. A
// range's extent on the curve is not a function of its endpoints alone.
const FocusSamples = 64

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type animation struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// Controller is the single writer of a chart's transform. Every commit is
// clamped, updates the window and is reported to the change observer.
type Controller struct {
	curve    *hilbert.Curve
	maxScale float64
	t        Transform
	window   Window
	anim     *animation
	clock    Clock

	onChange func(Transform)
	onEnd    func(Transform)
}

func NewController(curve *hilbert.Curve, opts ...Option) *Controller {
	c := &Controller{clock: systemClock{}, t: Identity}
	for _, opt := range opts {
		opt(c)
	}
	c.SetCurve(curve)
	return c
}

// OnChange registers the observer of every committed transform.
func (c *Controller) OnChange(fn func(Transform)) {
	c.onChange = fn
}

// OnEnd registers the observer of finished gestures and animations.
func (c *Controller) OnEnd(fn func(Transform)) {
	c.onEnd = fn
}

// SetCurve switches to a new curve (order or width change) and re-clamps the
// current transform against it.
func (c *Controller) SetCurve(curve *hilbert.Curve) {
	c.curve = curve
	c.maxScale = float64(curve.Side())
	c.anim = nil
	c.commit(c.t)
}

func (c *Controller) Transform() Transform {
	return c.t
}

func (c *Controller) Window() Window {
	return c.window
}

func (c *Controller) MaxScale() float64 {
	return c.maxScale
}

// Animating reports whether a focus animation is in flight.
func (c *Controller) Animating() bool {
	return c.anim != nil
}

// Clamp pins t to the scale extent [1, 2^order] and the translate extent,
// which keeps the visible window inside the canvas.
func (c *Controller) Clamp(t Transform) Transform {
	w := c.curve.Width()
	k := t.K
	if math.IsNaN(k) || k < 1 {
		k = 1
	}
	k = min(k, c.maxScale)
	lo := w - w*k
	return Transform{K: k, X: clampf(t.X, lo, 0), Y: clampf(t.Y, lo, 0)}
}

func clampf(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return hi
	}
	return max(lo, min(hi, v))
}

// Apply commits t as a direct manipulation, cancelling any animation.
func (c *Controller) Apply(t Transform) {
	c.anim = nil
	c.commit(t)
}

// ZoomBy scales by factor around the screen point (sx, sy).
func (c *Controller) ZoomBy(factor, sx, sy float64) {
	px, py := c.t.Invert(sx, sy)
	k := c.Clamp(Transform{K: c.t.K * factor}).K
	c.Apply(Transform{K: k, X: sx - px*k, Y: sy - py*k})
}

// PanBy translates by a screen delta.
func (c *Controller) PanBy(dx, dy float64) {
	c.Apply(Transform{K: c.t.K, X: c.t.X + dx, Y: c.t.Y + dy})
}

// End reports the end of a gesture.
func (c *Controller) End() {
	if c.onEnd != nil {
		c.onEnd(c.t)
	}
}

// Reset returns to the identity transform.
func (c *Controller) Reset() {
	c.Apply(Identity)
	c.End()
}

// FocusTarget computes the transform that fits [pos, pos+length) on screen:
// the sampled cell bounding box is scaled to fill the canvas with its
// top-left corner at the origin.
func (c *Controller) FocusTarget(pos, length uint64) (Transform, error) {
	if length == 0 {
		return Transform{}, fmt.Errorf("focus: %w", hilbert.ErrEmptyRange)
	}
	end, carry := bits.Add64(pos, length, 0)
	if carry != 0 || end > c.curve.Capacity() {
		return Transform{}, fmt.Errorf("focus on %d+%d: %w", pos, length, hilbert.ErrRangeOverflow)
	}

	first := c.curve.CellAt(pos)
	minX, minY, maxX, maxY := first.X, first.Y, first.X, first.Y
	for i := uint64(1); i <= FocusSamples; i++ {
		hi, lo := bits.Mul64(length-1, i)
		step, _ := bits.Div64(hi, lo, FocusSamples)
		cell := c.curve.CellAt(pos + step)
		minX, minY = min(minX, cell.X), min(minY, cell.Y)
		maxX, maxY = max(maxX, cell.X), max(maxY, cell.Y)
	}

	side := float64(max(maxX-minX, maxY-minY) + 1)
	k := c.Clamp(Transform{K: float64(c.curve.Side()) / side}).K
	cw := c.curve.CellWidth()
	return c.Clamp(Transform{
		K: k,
		X: -float64(minX) * cw * k,
		Y: -float64(minY) * cw * k,
	}), nil
}

// FocusOn moves to the FocusTarget of the range. A zero duration applies the
// target at once; otherwise an animation starts that Tick advances. A later
// FocusOn or direct manipulation supersedes it.
func (c *Controller) FocusOn(pos, length uint64, d time.Duration) error {
	to, err := c.FocusTarget(pos, length)
	if err != nil {
		return err
	}
	if d <= 0 {
		c.Apply(to)
		c.End()
		return nil
	}
	c.anim = &animation{from: c.t, to: to, start: c.clock.Now(), duration: d}
	return nil
}

// Tick advances the animation to now and reports whether it is still
// running.
func (c *Controller) Tick(now time.Time) bool {
	a := c.anim
	if a == nil {
		return false
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	p = max(0, min(1, p))
	c.commit(lerp(a.from, a.to, easeCubicInOut(p)))
	if p < 1 {
		return true
	}
	c.anim = nil
	c.End()
	return false
}

func (c *Controller) commit(t Transform) {
	c.t = c.Clamp(t)
	w := c.curve.Width()
	c.window = Window{
		X0: -c.t.X / c.t.K,
		Y0: -c.t.Y / c.t.K,
		X1: (w - c.t.X) / c.t.K,
		Y1: (w - c.t.Y) / c.t.K,
	}
	if c.onChange != nil {
		c.onChange(c.t)
	}
}

func easeCubicInOut(t float64) float64 {
	if t < .5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
