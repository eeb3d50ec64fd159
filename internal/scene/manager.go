// Package scene manages the lifecycle of the secondary (3D) view: it is
// created lazily one slide before it is needed, destroyed a grace delay
// after its last use, and viewpoint-synchronized to the primary view
// while both are live.
package scene

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

const (
	// DefaultDestroyGrace absorbs rapid back-and-forth navigation
	// without thrashing view creation.
	DefaultDestroyGrace = 600 * time.Millisecond
	// DefaultSyncThrottle is the minimum spacing between watcher syncs.
	// Intermediate viewpoint changes inside the window are dropped.
	DefaultSyncThrottle = 100 * time.Millisecond

	watchInterval = 25 * time.Millisecond
)

// ErrNoFactory is returned when the secondary view is needed but no
// factory was configured.
var ErrNoFactory = errors.New("no secondary view factory")

// Factory constructs and tears down the secondary surface. The returned
// surface's View may be populated asynchronously once the underlying
// engine reports ready; readers tolerate nil.
type Factory interface {
	CreateSecondary() (*view.Surface, error)
	DestroySecondary(s *view.Surface)
}

// State is the lifecycle state of the secondary view.
type State int

const (
	StateAbsent State = iota
	StateLive
	StatePendingDestroy
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateLive:
		return "live"
	case StatePendingDestroy:
		return "pending-destroy"
	default:
		return "unknown"
	}
}

// Manager owns the single secondary-view instance. All creation and
// destruction goes through it; other components only read the current
// reference.
type Manager struct {
	// Grace and Throttle default to the package constants; tests tune
	// them before first use.
	Grace    time.Duration
	Throttle time.Duration

	primary func() view.View
	factory Factory
	syncer  *Syncer

	mu           sync.Mutex
	surface      *view.Surface
	destroyTimer *time.Timer
	watchStop    chan struct{}
	lastSync     time.Time
}

// NewManager wires the manager to a provider for the primary view
// (which may not be ready yet) and the secondary-view factory.
func NewManager(primary func() view.View, factory Factory) *Manager {
	return &Manager{
		Grace:    DefaultDestroyGrace,
		Throttle: DefaultSyncThrottle,
		primary:  primary,
		factory:  factory,
		syncer:   &Syncer{},
	}
}

// Syncer exposes the shared viewpoint syncer so the crossfade
// controller's one-shot sync honors the same reentrancy guard.
func (m *Manager) Syncer() *Syncer { return m.syncer }

// EvaluateNeed reports whether any slide in the one-slide window around
// index references the secondary surface. The lookaround pre-creates
// the view one slide early and keeps it one slide past its last use,
// avoiding pop-in at exact boundaries.
func EvaluateNeed(index int, slides []story.Slide) bool {
	for _, i := range [3]int{index - 1, index, index + 1} {
		if i >= 0 && i < len(slides) && slides[i].UsesSurface(view.SurfaceSecondary) {
			return true
		}
	}
	return false
}

// Ensure creates the secondary surface if absent and cancels any
// pending destroy. It is idempotent.
func (m *Manager) Ensure() (*view.Surface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLocked()
}

func (m *Manager) ensureLocked() (*view.Surface, error) {
	if m.destroyTimer != nil {
		m.destroyTimer.Stop()
		m.destroyTimer = nil
	}
	if m.surface != nil {
		return m.surface, nil
	}
	if m.factory == nil {
		return nil, ErrNoFactory
	}
	s, err := m.factory.CreateSecondary()
	if err != nil {
		return nil, err
	}
	m.surface = s
	log.Printf("[*] secondary view created")
	return s, nil
}

// EvaluateAndTransition recomputes need for the given slide index and
// moves the lifecycle accordingly: ensure + (re)installed watcher when
// needed, immediate watcher teardown and grace-delayed destroy when
// not.
func (m *Manager) EvaluateAndTransition(index int, slides []story.Slide) {
	need := EvaluateNeed(index, slides)
	m.mu.Lock()
	defer m.mu.Unlock()

	if need {
		if _, err := m.ensureLocked(); err != nil {
			log.Printf("[!] failed to ensure secondary view: %v", err)
			return
		}
		m.restartWatcherLocked()
		return
	}

	// Syncing an about-to-die view is wasted work: the watcher goes
	// now, the view itself only after the grace delay.
	m.stopWatcherLocked()
	if m.surface != nil && m.destroyTimer == nil {
		m.destroyTimer = time.AfterFunc(m.Grace, m.destroyAfterGrace)
	}
}

func (m *Manager) destroyAfterGrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyTimer == nil {
		// Cancelled between firing and acquiring the lock.
		return
	}
	m.destroyTimer = nil
	m.destroyLocked()
}

func (m *Manager) destroyLocked() {
	if m.surface == nil {
		return
	}
	m.stopWatcherLocked()
	if m.factory != nil {
		m.factory.DestroySecondary(m.surface)
	}
	m.surface = nil
	log.Printf("[*] secondary view destroyed")
}

// Shutdown tears everything down immediately.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyTimer != nil {
		m.destroyTimer.Stop()
		m.destroyTimer = nil
	}
	m.destroyLocked()
}

// Surface returns the current secondary surface, nil when absent.
func (m *Manager) Surface() *view.Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface
}

// View returns the current secondary view, nil when absent or not yet
// ready.
func (m *Manager) View() view.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.surface == nil {
		return nil
	}
	return m.surface.View
}

// CurrentState reports the lifecycle state.
func (m *Manager) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.surface == nil:
		return StateAbsent
	case m.destroyTimer != nil:
		return StatePendingDestroy
	default:
		return StateLive
	}
}

func (m *Manager) restartWatcherLocked() {
	m.stopWatcherLocked()
	stop := make(chan struct{})
	m.watchStop = stop
	go m.watch(stop)
}

func (m *Manager) stopWatcherLocked() {
	if m.watchStop != nil {
		close(m.watchStop)
		m.watchStop = nil
	}
}

// watch observes the primary view's viewpoint and copies changes onto
// the secondary, throttled leaky-bucket style: changes inside the
// throttle window are dropped, not buffered.
func (m *Manager) watch(stop chan struct{}) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var last view.Viewpoint
	seeded := false
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pv := m.primary()
			if pv == nil {
				continue
			}
			vp := pv.Viewpoint()
			if seeded && viewpointEqual(vp, last) {
				continue
			}
			last = vp
			seeded = true

			m.mu.Lock()
			var sv view.View
			if m.surface != nil {
				sv = m.surface.View
			}
			throttled := time.Since(m.lastSync) < m.Throttle
			m.mu.Unlock()
			if sv == nil || throttled {
				continue
			}
			if m.syncer.Sync(pv, sv) {
				m.mu.Lock()
				m.lastSync = time.Now()
				m.mu.Unlock()
			}
		}
	}
}

func viewpointEqual(a, b view.Viewpoint) bool {
	if a.Scale != b.Scale || a.Rotation != b.Rotation {
		return false
	}
	switch {
	case a.Extent == nil && b.Extent == nil:
		return true
	case a.Extent == nil || b.Extent == nil:
		return false
	}
	return *a.Extent == *b.Extent
}
