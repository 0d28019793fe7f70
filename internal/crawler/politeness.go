package crawler

import (
	"context"
	"time"
)

// visitedSet tracks posting URLs already handed to the extractor. It only
// grows, and is owned by a single crawl so it needs no locking.
type visitedSet struct {
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// MarkIfNew stores the URL if it has not been seen before and returns true.
func (v *visitedSet) MarkIfNew(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := v.seen[url]; ok {
		return false
	}
	v.seen[url] = struct{}{}
	return true
}

func (v *visitedSet) Len() int {
	return len(v.seen)
}

// TimerPauser waits on a timer and returns early when ctx is done.
type TimerPauser struct{}

// Pause blocks for delay or until ctx is canceled.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
