package scene

import (
	"sync"
	"testing"
	"time"

	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
	"github.com/ivlev/storymap/internal/view/viewtest"
)

type fakeFactory struct {
	mu       sync.Mutex
	creates  int
	destroys int
	scene    *viewtest.FakeSceneView
}

func (f *fakeFactory) CreateSecondary() (*view.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.scene = viewtest.NewFakeSceneView()
	return &view.Surface{
		ID:        view.SurfaceSecondary,
		Container: &viewtest.FakeContainer{Hidden: true},
		View:      f.scene,
	}, nil
}

func (f *fakeFactory) DestroySecondary(s *view.Surface) {
	f.mu.Lock()
	f.destroys++
	f.mu.Unlock()
}

func (f *fakeFactory) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.destroys
}

// slides where only index 3 references the secondary surface.
func secondaryAtThree() []story.Slide {
	slides := make([]story.Slide, 12)
	for i := range slides {
		slides[i] = story.Slide{Maps: []view.SurfaceID{view.SurfacePrimary}}
	}
	slides[3] = story.Slide{Maps: []view.SurfaceID{view.SurfacePrimary, view.SurfaceSecondary}}
	return slides
}

func newTestManager(primary view.View) (*Manager, *fakeFactory) {
	f := &fakeFactory{}
	m := NewManager(func() view.View { return primary }, f)
	m.Grace = 40 * time.Millisecond
	return m, f
}

func TestEvaluateNeedWindow(t *testing.T) {
	slides := secondaryAtThree()
	for i := range slides {
		want := i >= 2 && i <= 4
		if got := EvaluateNeed(i, slides); got != want {
			t.Errorf("EvaluateNeed(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestDestroyAfterGrace(t *testing.T) {
	primary := viewtest.NewFakeView(view.Type2D)
	m, f := newTestManager(primary)
	defer m.Shutdown()
	slides := secondaryAtThree()

	m.EvaluateAndTransition(3, slides)
	if m.CurrentState() != StateLive {
		t.Fatalf("expected live state, got %s", m.CurrentState())
	}

	m.EvaluateAndTransition(10, slides)
	if m.CurrentState() != StatePendingDestroy {
		t.Fatalf("expected pending destroy, got %s", m.CurrentState())
	}

	deadline := time.Now().Add(time.Second)
	for m.CurrentState() != StateAbsent && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.CurrentState() != StateAbsent {
		t.Fatal("secondary view should be destroyed after the grace delay")
	}
	creates, destroys := f.counts()
	if creates != 1 || destroys != 1 {
		t.Errorf("expected 1 create / 1 destroy, got %d / %d", creates, destroys)
	}
}

func TestGraceCancelledByReEnsure(t *testing.T) {
	primary := viewtest.NewFakeView(view.Type2D)
	m, f := newTestManager(primary)
	defer m.Shutdown()
	slides := secondaryAtThree()

	m.EvaluateAndTransition(3, slides)
	m.EvaluateAndTransition(10, slides)
	// Back before the grace delay elapses.
	m.EvaluateAndTransition(3, slides)

	time.Sleep(3 * m.Grace)
	if m.CurrentState() != StateLive {
		t.Fatalf("expected live after cancelled destroy, got %s", m.CurrentState())
	}
	creates, destroys := f.counts()
	if creates != 1 || destroys != 0 {
		t.Errorf("expected the original instance to survive, got %d creates / %d destroys", creates, destroys)
	}
}

func TestEnsureIdempotent(t *testing.T) {
	primary := viewtest.NewFakeView(view.Type2D)
	m, f := newTestManager(primary)
	defer m.Shutdown()

	s1, err := m.Ensure()
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	s2, err := m.Ensure()
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if s1 != s2 {
		t.Error("Ensure must return the existing instance")
	}
	if creates, _ := f.counts(); creates != 1 {
		t.Errorf("expected a single create, got %d", creates)
	}
}

func TestEnsureWithoutFactory(t *testing.T) {
	m := NewManager(func() view.View { return nil }, nil)
	if _, err := m.Ensure(); err != ErrNoFactory {
		t.Errorf("expected ErrNoFactory, got %v", err)
	}
}

func TestWatcherSyncsPrimaryToSecondary(t *testing.T) {
	primary := viewtest.NewFakeView(view.Type2D)
	primary.Ctr = view.Center{Latitude: 0}
	m, f := newTestManager(primary)
	defer m.Shutdown()
	slides := secondaryAtThree()

	m.EvaluateAndTransition(3, slides)

	primary.SetViewpoint(view.Viewpoint{
		Extent: &view.Extent{XMin: 1, YMin: 2, XMax: 3, YMax: 4},
		Scale:  50000,
	})

	// The watcher may emit an initial alignment sync first; wait for the
	// changed viewpoint to arrive.
	var call *viewtest.GoToCall
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		call = f.scene.LastCall()
		if call != nil && call.Target.Viewpoint != nil && call.Target.Viewpoint.Scale == 50000 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if call == nil || call.Target.Viewpoint == nil || call.Target.Viewpoint.Scale != 50000 {
		t.Fatalf("watcher never synced the changed viewpoint, last call: %+v", call)
	}
	if call.Opts.Animate {
		t.Error("watcher sync must navigate without animation")
	}
}

func TestWatcherStoppedWhenNotNeeded(t *testing.T) {
	primary := viewtest.NewFakeView(view.Type2D)
	m, f := newTestManager(primary)
	defer m.Shutdown()
	slides := secondaryAtThree()

	m.EvaluateAndTransition(3, slides)
	m.EvaluateAndTransition(10, slides)

	// The watcher is gone immediately even though the view still lives
	// out its grace period.
	before := f.scene.CallCount()
	primary.SetViewpoint(view.Viewpoint{Scale: 12345})
	time.Sleep(4 * watchInterval)
	if f.scene.CallCount() != before {
		t.Error("watcher must be torn down as soon as the secondary is unneeded")
	}
}
