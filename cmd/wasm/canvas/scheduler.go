//go:build js
// +build js

package canvas

import (
	"syscall/js"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/chart"
)

var (
	cancelAnimationFrame  = js.Global().Get("cancelAnimationFrame")
	requestAnimationFrame = js.Global().Get("requestAnimationFrame")
)

// FrameScheduler runs chart frames on requestAnimationFrame.
type FrameScheduler struct {
	queue  chart.FrameQueue
	handle js.Value
	fn     js.Func
}

func NewFrameScheduler() *FrameScheduler {
	s := &FrameScheduler{handle: js.Null()}
	s.fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		s.handle = js.Null()
		s.queue.Flush(time.Now())
		return js.Undefined()
	})
	return s
}

func (s *FrameScheduler) RequestFrame(cb func(time.Time)) {
	s.queue.RequestFrame(cb)
	if s.handle.IsNull() {
		s.handle = requestAnimationFrame.Invoke(s.fn)
	}
}

func (s *FrameScheduler) Release() {
	if !s.handle.IsNull() {
		cancelAnimationFrame.Invoke(s.handle)
		s.handle = js.Null()
	}
	s.fn.Release()
}
