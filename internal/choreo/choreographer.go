// Package choreo maps per-slide configuration onto concrete view
// mutations: discretely on slide-boundary navigation, continuously as a
// function of scroll progress.
package choreo

import (
	"fmt"
	"time"

	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

// Choreographer applies one slide's full configuration to a view in a
// single discrete jump.
type Choreographer struct {
	// GoToDuration is the animation length of discrete viewpoint jumps.
	GoToDuration time.Duration
	// FitMode is "scale" or "extent", see config.Config.
	FitMode string

	tracks trackReloader
}

func New(goToDuration time.Duration, fitMode string) *Choreographer {
	return &Choreographer{GoToDuration: goToDuration, FitMode: fitMode}
}

// ApplySlide dispatches every aspect present on the slide. Handler
// failures are isolated: one broken aspect never blocks the rest.
func (c *Choreographer) ApplySlide(slide *story.Slide, v view.View, tc view.TimeControl, embedded bool) {
	if slide == nil || v == nil {
		return
	}
	for _, a := range discreteOrder {
		if !present(slide, a) {
			continue
		}
		switch a {
		case AspectViewpoint:
			runAspect(a, func() error { return c.applyViewpoint(slide, v, embedded) })
		case AspectTime:
			runAspect(a, func() error { return c.applyTime(slide, tc, embedded) })
		case AspectLayers:
			runAspect(a, func() error { return c.applyLayers(slide, v) })
		case AspectTrack:
			runAspect(a, func() error { return c.tracks.reload(slide.TrackRenderer, v) })
		case AspectEnvironment:
			runAspect(a, func() error { return c.applyEnvironment(slide, v) })
		}
	}
}

// applyViewpoint navigates to the slide's camera (preferred) or
// viewpoint over a short animation. While embedded, the host page owns
// the camera through continuous progress updates, so the discrete snap
// is suppressed entirely.
func (c *Choreographer) applyViewpoint(slide *story.Slide, v view.View, embedded bool) error {
	if embedded {
		return nil
	}
	var target view.GoToTarget
	switch {
	case slide.Camera != nil:
		cam := *slide.Camera
		target.Camera = &cam
	case slide.Viewpoint != nil:
		vp := slide.Viewpoint.Clone()
		if c.FitMode == "scale" && vp.Scale > 0 && vp.Extent != nil {
			// Scale mode: the scale drives the zoom, the extent only
			// contributes its center.
			cx, cy := vp.Extent.CenterX(), vp.Extent.CenterY()
			vp.Extent = &view.Extent{XMin: cx, YMin: cy, XMax: cx, YMax: cy}
		}
		target.Viewpoint = &vp
	default:
		return nil
	}
	// Fire and forget; a superseding navigation resolving this one as
	// NavSuperseded is a normal outcome.
	v.GoTo(target, view.GoToOptions{Animate: true, Duration: c.GoToDuration})
	return nil
}

// applyTime configures the time-control widget: full window, step
// granularity, extent at the window start. Playback starts only in
// standalone mode with a ready widget; otherwise it is explicitly
// stopped so a previous slide's playback never bleeds into this one.
func (c *Choreographer) applyTime(slide *story.Slide, tc view.TimeControl, embedded bool) error {
	if tc == nil {
		return nil
	}
	ts := slide.TimeSlider
	start := time.UnixMilli(ts.Start)
	end := time.UnixMilli(ts.End)
	tc.SetFullExtent(start, end)
	tc.SetStopInterval(ts.Step, ts.Unit)
	s := start
	tc.SetExtent(&s, &s)
	if !embedded && tc.Ready() {
		tc.Play()
	} else {
		tc.Stop()
	}
	return nil
}

// applyLayers toggles visibility for layers named in the show/hide
// lists; layers in neither list are untouched.
func (c *Choreographer) applyLayers(slide *story.Slide, v view.View) error {
	lv := slide.LayerVisibility
	show := make(map[string]bool, len(lv.Show))
	for _, name := range lv.Show {
		show[name] = true
	}
	hide := make(map[string]bool, len(lv.Hide))
	for _, name := range lv.Hide {
		hide[name] = true
	}
	m := v.Map()
	if m == nil {
		return fmt.Errorf("view has no layer collection")
	}
	for _, layer := range m.Layers() {
		switch {
		case show[layer.Title()]:
			layer.SetVisible(true)
		case hide[layer.Title()]:
			layer.SetVisible(false)
		}
	}
	return nil
}

// applyEnvironment merges the slide's partial environment patch onto the
// view's current environment, field by field. Views without environment
// support (2D) silently no-op.
func (c *Choreographer) applyEnvironment(slide *story.Slide, v view.View) error {
	eh, ok := v.(view.EnvironmentHolder)
	if !ok {
		return nil
	}
	eh.SetEnvironment(view.MergeEnvironment(eh.Environment(), slide.Environment))
	return nil
}
