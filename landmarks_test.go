package parallax3d

import (
	"sync"
	"testing"
)

func TestLatestSlot(t *testing.T) {
	var s LatestSlot

	if _, _, ok := s.Latest(); ok {
		t.Fatal("empty slot reported a value")
	}

	s.Publish(LandmarkFrame{Camera: CameraIntrinsics{Width: 1}})
	s.Publish(LandmarkFrame{Camera: CameraIntrinsics{Width: 2}})

	f, seq, ok := s.Latest()
	if !ok || seq != 2 {
		t.Fatalf("seq = %d ok = %v", seq, ok)
	}
	if f.Camera.Width != 2 {
		t.Errorf("older frame returned: %+v", f)
	}

	// Reading does not consume.
	if _, again, _ := s.Latest(); again != seq {
		t.Errorf("seq changed on read: %d", again)
	}
}

func TestLatestSlotConcurrentPublish(t *testing.T) {
	var s LatestSlot
	const writers, each = 8, 100

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				s.Publish(LandmarkFrame{})
			}
		}()
	}
	wg.Wait()

	if _, seq, _ := s.Latest(); seq != writers*each {
		t.Errorf("seq = %d, want %d", seq, writers*each)
	}
}
