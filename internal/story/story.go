// Package story defines the choreography data model: an ordered sequence
// of slides, each describing a target map/scene state.
package story

import (
	"errors"
	"fmt"

	"github.com/ivlev/storymap/internal/view"
)

// ErrBadSlide reports a slide that violates the data model invariants.
var ErrBadSlide = errors.New("invalid slide")

// TimeSlider describes the time window a slide plays through.
type TimeSlider struct {
	Start int64         `json:"start"` // unix milliseconds
	End   int64         `json:"end"`   // unix milliseconds
	Step  int           `json:"step"`  // interval value, e.g. 1
	Unit  view.TimeUnit `json:"unit"`  // interval unit, e.g. "seconds"
}

// StepMillis returns the step granularity in milliseconds. Months and
// years are calendar units; for snapping purposes they are approximated
// as 30 and 365 days.
func (ts TimeSlider) StepMillis() int64 {
	step := int64(ts.Step)
	switch ts.Unit {
	case view.UnitMilliseconds:
		return step
	case view.UnitSeconds:
		return step * 1000
	case view.UnitMinutes:
		return step * 60 * 1000
	case view.UnitHours:
		return step * 3600 * 1000
	case view.UnitDays:
		return step * 24 * 3600 * 1000
	case view.UnitWeeks:
		return step * 7 * 24 * 3600 * 1000
	case view.UnitMonths:
		return step * 30 * 24 * 3600 * 1000
	case view.UnitYears:
		return step * 365 * 24 * 3600 * 1000
	default:
		return 0
	}
}

// LayerVisibility lists layer titles to show and to hide. Layers in
// neither list are left untouched.
type LayerVisibility struct {
	Show []string `json:"show,omitempty"`
	Hide []string `json:"hide,omitempty"`
}

// TrackRenderer names a time-aware layer and the grouping/styling used
// to render time-stamped points as trajectories.
type TrackRenderer struct {
	Layer      string          `json:"layer"`
	GroupField string          `json:"groupField"`
	Style      view.TrackStyle `json:"style"`
}

// Slide is one entry in the choreography sequence. Every field except
// Maps is optional; an absent field means "nothing to do" for the
// corresponding choreography aspect.
type Slide struct {
	Maps            []view.SurfaceID  `json:"maps"`
	Viewpoint       *view.Viewpoint   `json:"viewpoint,omitempty"`
	Camera          *view.Camera      `json:"camera,omitempty"`
	TimeSlider      *TimeSlider       `json:"timeSlider,omitempty"`
	LayerVisibility *LayerVisibility  `json:"layerVisibility,omitempty"`
	TrackRenderer   *TrackRenderer    `json:"trackRenderer,omitempty"`
	Environment     *view.Environment `json:"environment,omitempty"`
}

// IsCrossfade reports whether the slide spans both surfaces.
func (s *Slide) IsCrossfade() bool { return len(s.Maps) == 2 }

// From returns the surface the slide transitions away from.
func (s *Slide) From() view.SurfaceID {
	if len(s.Maps) == 0 {
		return view.SurfacePrimary
	}
	return s.Maps[0]
}

// To returns the surface the slide lands on. For single-view slides this
// is the slide's only surface.
func (s *Slide) To() view.SurfaceID {
	if len(s.Maps) == 0 {
		return view.SurfacePrimary
	}
	return s.Maps[len(s.Maps)-1]
}

// UsesSurface reports whether the slide references the given surface.
func (s *Slide) UsesSurface(id view.SurfaceID) bool {
	for _, m := range s.Maps {
		if m == id {
			return true
		}
	}
	return false
}

// Story is the validated ordered slide sequence.
type Story struct {
	Slides []Slide `json:"slides"`
}

// Validate checks the data model invariants. A two-element maps array
// must reference exactly the primary and secondary surfaces, in order;
// no other crossfade arity is meaningful.
func (st *Story) Validate() error {
	if len(st.Slides) == 0 {
		return fmt.Errorf("%w: story has no slides", ErrBadSlide)
	}
	for i, s := range st.Slides {
		switch len(s.Maps) {
		case 1:
			if s.Maps[0] != view.SurfacePrimary && s.Maps[0] != view.SurfaceSecondary {
				return fmt.Errorf("%w: slide %d references unknown surface %d", ErrBadSlide, i, s.Maps[0])
			}
		case 2:
			if s.Maps[0] != view.SurfacePrimary || s.Maps[1] != view.SurfaceSecondary {
				return fmt.Errorf("%w: slide %d crossfade maps must be [0,1], got %v", ErrBadSlide, i, s.Maps)
			}
		default:
			return fmt.Errorf("%w: slide %d has %d map entries", ErrBadSlide, i, len(s.Maps))
		}
		if ts := s.TimeSlider; ts != nil {
			if ts.End < ts.Start {
				return fmt.Errorf("%w: slide %d time window ends before it starts", ErrBadSlide, i)
			}
			if ts.Unit != "" && ts.StepMillis() == 0 && ts.Step != 0 {
				return fmt.Errorf("%w: slide %d has unknown step unit %q", ErrBadSlide, i, ts.Unit)
			}
		}
	}
	return nil
}

// InRange reports whether index addresses a slide.
func (st *Story) InRange(index int) bool {
	return index >= 0 && index < len(st.Slides)
}
