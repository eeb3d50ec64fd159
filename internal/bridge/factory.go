package bridge

import (
	"log"
	"sync"

	"github.com/ivlev/storymap/internal/view"
)

// Factory creates and destroys the secondary surface by instructing the
// renderer to mount and unmount the 3D scene. It satisfies the scene
// manager's factory contract.
type Factory struct {
	hub *Hub

	mu        sync.Mutex
	secondary *Surface
}

func NewFactory(hub *Hub) *Factory {
	return &Factory{hub: hub}
}

// CreateSecondary emits the scene-mount command and returns the bridge
// surface that will mirror it. The renderer fills in viewpoint and layer
// state through ApplyState once the scene is up.
func (f *Factory) CreateSecondary() (*view.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.secondary == nil {
		f.secondary = NewSurface(f.hub, view.SurfaceSecondary, view.Type3D)
	}
	f.hub.Publish(view.SurfaceSecondary, "createScene", nil)
	return f.secondary.Build(), nil
}

// DestroySecondary emits the scene-unmount command.
func (f *Factory) DestroySecondary(s *view.Surface) {
	f.hub.Publish(view.SurfaceSecondary, "destroyScene", nil)
	log.Printf("[-] secondary scene unmounted")
}

// Secondary returns the bridge surface for state ingestion, nil before
// the first create.
func (f *Factory) Secondary() *Surface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secondary
}
