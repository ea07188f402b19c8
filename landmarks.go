package parallax3d

import (
	"sync/atomic"
	"time"
)

// LandmarkFrame is one completed face-tracker result. Faces may be empty
// when nobody is in view.
type LandmarkFrame struct {
	Faces    []FaceLandmarks
	Camera   CameraIntrinsics
	Captured time.Time
}

// LandmarkSource is anything that can hand out the most recent tracker
// result. seq increases by one for every published frame so a reader can
// tell a fresh result from one it has already consumed.
type LandmarkSource interface {
	Latest() (frame LandmarkFrame, seq uint64, ok bool)
}

// LatestSlot is a single-value register: every Publish overwrites the
// previous value and readers always see the newest one. There is no
// queueing, a slow reader simply skips results.
type LatestSlot struct {
	v atomic.Pointer[slotValue]
}

type slotValue struct {
	frame LandmarkFrame
	seq   uint64
}

func (s *LatestSlot) Publish(f LandmarkFrame) {
	for {
		old := s.v.Load()
		next := &slotValue{frame: f, seq: 1}
		if old != nil {
			next.seq = old.seq + 1
		}
		if s.v.CompareAndSwap(old, next) {
			return
		}
	}
}

func (s *LatestSlot) Latest() (LandmarkFrame, uint64, bool) {
	v := s.v.Load()
	if v == nil {
		return LandmarkFrame{}, 0, false
	}
	return v.frame, v.seq, true
}
