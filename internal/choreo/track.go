package choreo

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

// trackReadyTimeout bounds how long a replaced track layer may take to
// load before its configuration is abandoned.
const trackReadyTimeout = 30 * time.Second

// trackReloader performs the hard reset of a time-aware track layer:
// remove it, re-add a clone at the same position, wait for the clone to
// load, then reapply time and track configuration. Some track-rendering
// engines cache renderer state that only a full layer replacement
// reliably clears.
//
// Reloads are guarded per layer: a reload issued while one is still in
// flight for the same layer is dropped, not queued.
type trackReloader struct {
	mu       sync.Mutex
	inflight map[string]bool
}

func (r *trackReloader) reload(tr *story.TrackRenderer, v view.View) error {
	r.mu.Lock()
	if r.inflight == nil {
		r.inflight = make(map[string]bool)
	}
	if r.inflight[tr.Layer] {
		r.mu.Unlock()
		log.Printf("[!] track reload for %q still in flight, dropping", tr.Layer)
		return nil
	}
	r.inflight[tr.Layer] = true
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		delete(r.inflight, tr.Layer)
		r.mu.Unlock()
	}

	m := v.Map()
	var orig view.TrackLayer
	for _, layer := range m.Layers() {
		if layer.Title() != tr.Layer {
			continue
		}
		tl, ok := layer.(view.TrackLayer)
		if !ok {
			release()
			return fmt.Errorf("layer %q does not support track rendering", tr.Layer)
		}
		orig = tl
		break
	}
	if orig == nil {
		release()
		return fmt.Errorf("track layer %q not found", tr.Layer)
	}

	index := m.IndexOf(orig)
	startField := orig.TimeStartField()
	m.Remove(orig)
	clone := orig.CloneLayer()
	m.Add(clone, index)

	// The wait runs off the dispatch path: sibling handlers for this
	// slide have already been invoked by the time the clone loads.
	go func() {
		defer release()
		if err := clone.WaitReady(trackReadyTimeout); err != nil {
			log.Printf("[!] track layer %q did not become ready: %v", tr.Layer, err)
			return
		}
		clone.SetTimeStartField(startField)
		clone.SetTrackInfo(tr.GroupField, tr.Style)
		clone.SetVisible(true)
	}()
	return nil
}
