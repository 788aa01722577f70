package chart

import (
	"time"
)

// Scheduler runs callbacks at the next frame boundary.
type Scheduler interface {
	RequestFrame(cb func(now time.Time))
}

// FrameQueue is a Scheduler driven by its host: callbacks requested since
// the last Flush run on the next one.
type FrameQueue struct {
	queue []func(time.Time)
}

func (q *FrameQueue) RequestFrame(cb func(time.Time)) {
	q.queue = append(q.queue, cb)
}

func (q *FrameQueue) Pending() int {
	return len(q.queue)
}

// Flush runs the queued callbacks and returns how many ran. Callbacks they
// request wait for the next Flush.
func (q *FrameQueue) Flush(now time.Time) int {
	queued := q.queue
	q.queue = nil
	for _, cb := range queued {
		cb(now)
	}
	return len(queued)
}
