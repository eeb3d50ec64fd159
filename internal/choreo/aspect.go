package choreo

import (
	"log"

	"github.com/ivlev/storymap/internal/story"
)

// Aspect enumerates the choreography aspects a slide can carry. The set
// is closed: dispatchers switch exhaustively over it.
type Aspect int

const (
	AspectViewpoint Aspect = iota
	AspectTime
	AspectLayers
	AspectTrack
	AspectEnvironment
)

func (a Aspect) String() string {
	switch a {
	case AspectViewpoint:
		return "viewpoint"
	case AspectTime:
		return "time"
	case AspectLayers:
		return "layers"
	case AspectTrack:
		return "track"
	case AspectEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Handler invocation order is fixed, but handlers are written so their
// relative order does not affect the final visual state.
var (
	discreteOrder   = []Aspect{AspectViewpoint, AspectTime, AspectLayers, AspectTrack, AspectEnvironment}
	continuousOrder = []Aspect{AspectViewpoint, AspectTime, AspectEnvironment}
)

// present reports whether the slide carries the aspect's field.
func present(s *story.Slide, a Aspect) bool {
	switch a {
	case AspectViewpoint:
		return s.Viewpoint != nil || s.Camera != nil
	case AspectTime:
		return s.TimeSlider != nil
	case AspectLayers:
		return s.LayerVisibility != nil
	case AspectTrack:
		return s.TrackRenderer != nil
	case AspectEnvironment:
		return s.Environment != nil
	default:
		return false
	}
}

// runAspect runs one handler with failure isolation: an error or panic
// in one aspect is logged and must not block the slide's remaining
// choreography.
func runAspect(a Aspect, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[!] %s choreography panicked: %v", a, r)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("[!] %s choreography failed: %v", a, err)
	}
}
