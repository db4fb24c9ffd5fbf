package pipeline

import "time"

// FrameScheduler runs fn on the next animation frame.
type FrameScheduler interface {
	NextFrame(fn func())
}

// TimerFrames approximates frames with a fixed interval.
type TimerFrames struct {
	Interval time.Duration
}

func (t TimerFrames) NextFrame(fn func()) {
	time.AfterFunc(t.Interval, fn)
}

// ImmediateFrames runs fn synchronously. Useful where no display exists.
type ImmediateFrames struct{}

func (ImmediateFrames) NextFrame(fn func()) { fn() }
