package scene

import (
	"math"
	"sync"
	"time"

	"github.com/ivlev/storymap/internal/view"
)

// DefaultSyncDebounce is how long the busy flag stays set after a sync
// is applied.
const DefaultSyncDebounce = 100 * time.Millisecond

// minScaleFactor keeps the latitude correction bounded near the poles.
const minScaleFactor = 0.01

// Syncer copies a viewpoint from one view to another, adjusting scale
// for the different scale semantics of perspective vs. orthographic
// projection away from the equator. A sync already in progress is
// skipped, not queued.
type Syncer struct {
	// Debounce overrides DefaultSyncDebounce when positive.
	Debounce time.Duration

	mu   sync.Mutex
	busy bool
}

// Sync clones the source viewpoint, applies the cos(latitude) scale
// correction and navigates the destination without animation. It
// reports whether the sync was applied (false while the busy window of
// a previous sync is still open).
func (s *Syncer) Sync(from, to view.View) bool {
	if from == nil || to == nil {
		return false
	}
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return false
	}
	s.busy = true
	s.mu.Unlock()

	vp := from.Viewpoint().Clone()
	factor := math.Cos(from.Center().Latitude * math.Pi / 180)
	if factor < minScaleFactor {
		factor = minScaleFactor
	}
	switch {
	case from.Type() == view.Type2D && to.Type() == view.Type3D:
		vp.Scale /= factor
	case from.Type() == view.Type3D && to.Type() == view.Type2D:
		vp.Scale *= factor
	}
	to.GoTo(view.GoToTarget{Viewpoint: &vp}, view.GoToOptions{Animate: false})

	debounce := s.Debounce
	if debounce <= 0 {
		debounce = DefaultSyncDebounce
	}
	time.AfterFunc(debounce, func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	})
	return true
}
