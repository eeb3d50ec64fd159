// Package nav translates navigation events — hash fragments and
// cross-document controller messages — into choreography dispatches.
package nav

import (
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ivlev/storymap/internal/choreo"
	"github.com/ivlev/storymap/internal/crossfade"
	"github.com/ivlev/storymap/internal/scene"
	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

// MessageSource is the identifier the embedding host stamps on its
// cross-document messages.
const MessageSource = "storymap-controller"

// Message is the payload the embedding host posts on every scroll
// update.
type Message struct {
	Source  string  `json:"source"`
	Payload Payload `json:"payload"`
}

// Payload carries the scroll state.
type Payload struct {
	IsEmbedded bool    `json:"isEmbedded"`
	Slide      int     `json:"slide"`
	Progress   float64 `json:"progress"`
}

// Presenter owns the presentation state: the slide sequence, the two
// surfaces, the scene lifecycle and the dispatch into discrete and
// continuous choreography.
type Presenter struct {
	runID  string
	slides []story.Slide

	primary *view.Surface
	scenes  *scene.Manager
	fade    *crossfade.Controller
	choreo  *choreo.Choreographer
	scroll  *choreo.Scroller

	mu        sync.Mutex
	embedded  bool
	lastSlide int
}

// NewPresenter wires the presenter. The scene manager must be the same
// instance the crossfade controller was built with; the presenter is
// the single owner of both.
func NewPresenter(st *story.Story, primary *view.Surface, scenes *scene.Manager, c *choreo.Choreographer) *Presenter {
	return &Presenter{
		runID:     uuid.NewString(),
		slides:    st.Slides,
		primary:   primary,
		scenes:    scenes,
		fade:      crossfade.NewController(primary, scenes),
		choreo:    c,
		scroll:    choreo.NewScroller(),
		lastSlide: -1,
	}
}

// RunID identifies this presentation run in logs.
func (p *Presenter) RunID() string { return p.runID }

// Embedded reports the current embedded-mode flag.
func (p *Presenter) Embedded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embedded
}

// HandleHash navigates to the slide a URL fragment addresses.
// Unparsable or out-of-range fragments are ignored; no navigation
// occurs.
func (p *Presenter) HandleHash(fragment string) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	index, err := strconv.Atoi(fragment)
	if err != nil {
		return
	}
	if index < 0 || index >= len(p.slides) {
		return
	}
	p.GoToSlide(index)
}

// HandleMessage consumes one controller message. A change in the slide
// index triggers a discrete dispatch in addition to the continuous
// progress dispatch.
func (p *Presenter) HandleMessage(msg Message) {
	if msg.Source != MessageSource {
		return
	}
	if msg.Payload.Slide < 0 || msg.Payload.Slide >= len(p.slides) {
		return
	}

	p.mu.Lock()
	p.embedded = msg.Payload.IsEmbedded
	changed := msg.Payload.Slide != p.lastSlide
	p.mu.Unlock()

	if changed {
		p.GoToSlide(msg.Payload.Slide)
	}
	p.applyProgress(msg.Payload.Slide, msg.Payload.Progress)
}

// GoToSlide performs the discrete slide-boundary dispatch: lifecycle
// re-evaluation, crossfade end state, full slide choreography on the
// active view.
func (p *Presenter) GoToSlide(index int) {
	if index < 0 || index >= len(p.slides) {
		return
	}
	p.scenes.EvaluateAndTransition(index, p.slides)

	slide := &p.slides[index]
	if slide.IsCrossfade() {
		p.fade.Crossfade(slide.From(), slide.To(), 1)
	}

	v, tc := p.active(slide.To())
	if v == nil {
		log.Printf("[!] slide %d: active view not ready, skipping choreography", index)
	} else {
		p.choreo.ApplySlide(slide, v, tc, p.Embedded())
	}

	p.mu.Lock()
	p.lastSlide = index
	p.mu.Unlock()
}

// applyProgress performs the continuous dispatch between a slide and
// its successor, plus the progress-driven crossfade when the slide
// spans both surfaces.
func (p *Presenter) applyProgress(index int, progress float64) {
	slide := &p.slides[index]
	if slide.IsCrossfade() {
		p.fade.Crossfade(slide.From(), slide.To(), progress)
	}

	var next *story.Slide
	if index+1 < len(p.slides) {
		next = &p.slides[index+1]
	}

	v, tc := p.active(slide.To())
	if v == nil {
		return
	}
	p.scroll.ApplyProgress(slide, next, progress, v, tc)
}

// active resolves the view and time-control pair for a surface,
// tolerating a not-yet-ready secondary.
func (p *Presenter) active(id view.SurfaceID) (view.View, view.TimeControl) {
	if id == view.SurfacePrimary {
		return p.primary.View, p.primary.TimeControl
	}
	s := p.scenes.Surface()
	if s == nil {
		return nil, nil
	}
	return s.View, s.TimeControl
}
