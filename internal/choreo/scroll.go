package choreo

import (
	"time"

	"github.com/ivlev/storymap/internal/interp"
	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

// Scroller computes the continuously interpolated state between two
// adjacent slides as a function of scroll progress and applies it to a
// view. Every call supersedes the previous navigation; rapid calls are
// the expected steady state.
type Scroller struct {
	Derive DeriveParams
}

func NewScroller() *Scroller {
	return &Scroller{Derive: DefaultDeriveParams}
}

// ApplyProgress dispatches per aspect present on cur, with the same
// failure isolation as the discrete choreographer. A nil next slide
// (last slide of the story) pins interpolation to cur.
func (s *Scroller) ApplyProgress(cur, next *story.Slide, progress float64, v view.View, tc view.TimeControl) {
	if cur == nil || v == nil {
		return
	}
	if next == nil {
		next = cur
	}
	t := interp.Clamp01(progress)
	for _, a := range continuousOrder {
		if !present(cur, a) {
			continue
		}
		switch a {
		case AspectViewpoint:
			runAspect(a, func() error { return s.interpViewpoint(cur, next, t, v) })
		case AspectTime:
			runAspect(a, func() error { return s.interpTime(cur, t, tc) })
		case AspectEnvironment:
			runAspect(a, func() error { return s.interpEnvironment(cur, next, t, v) })
		}
	}
}

func (s *Scroller) interpViewpoint(cur, next *story.Slide, t float64, v view.View) error {
	switch {
	case v.Type() == view.Type3D && cur.Camera != nil && next.Camera == nil && next.Viewpoint != nil:
		// The far side is 2D-style; project the camera down so both
		// endpoints are comparable 2D viewpoints.
		from := DeriveViewpoint(*cur.Camera, s.Derive)
		vp := lerpViewpoint(from, *next.Viewpoint, t)
		v.GoTo(view.GoToTarget{Viewpoint: &vp}, view.GoToOptions{Animate: false})
	case cur.Camera != nil && next.Camera != nil:
		cam := lerpCamera(*cur.Camera, *next.Camera, t)
		v.GoTo(view.GoToTarget{Camera: &cam}, view.GoToOptions{Animate: false})
	case cur.Camera != nil || next.Camera != nil:
		// 2D-3D boundary: synthesize the missing endpoint as a level
		// camera so tilt interpolates from/to zero.
		a := slideCamera(cur, s.Derive)
		b := slideCamera(next, s.Derive)
		if a == nil || b == nil {
			return nil
		}
		cam := lerpCamera(*a, *b, t)
		v.GoTo(view.GoToTarget{Camera: &cam}, view.GoToOptions{Animate: false})
	default:
		if cur.Viewpoint == nil || next.Viewpoint == nil {
			return nil
		}
		vp := lerpViewpoint(*cur.Viewpoint, *next.Viewpoint, t)
		v.GoTo(view.GoToTarget{Viewpoint: &vp}, view.GoToOptions{Animate: false})
	}
	return nil
}

// interpTime advances the time-control extent within the current
// slide's window: lerp, snap up to the next step tick, clamp. Playback
// is forced off; progress-driven time never auto-plays.
func (s *Scroller) interpTime(cur *story.Slide, t float64, tc view.TimeControl) error {
	if tc == nil {
		return nil
	}
	ts := cur.TimeSlider
	target := int64(interp.Lerp(float64(ts.Start), float64(ts.End), t))
	target = interp.SnapToStep(target, ts.Start, ts.StepMillis())
	target = interp.Clamp(target, ts.Start, ts.End)
	end := time.UnixMilli(target)
	tc.SetExtent(nil, &end)
	tc.Stop()
	return nil
}

// interpEnvironment computes a complete environment for the current
// progress and replaces the view's environment outright. Numeric fields
// interpolate when both slides define them; categorical fields snap to
// the next slide's value as soon as progress leaves zero.
func (s *Scroller) interpEnvironment(cur, next *story.Slide, t float64, v view.View) error {
	a, b := cur.Environment, next.Environment
	if a == nil || b == nil {
		return nil
	}
	eh, ok := v.(view.EnvironmentHolder)
	if !ok {
		return nil
	}

	out := &view.Environment{}
	la, lb := a.Lighting, b.Lighting
	if la != nil || lb != nil {
		l := &view.Lighting{}
		if la != nil && lb != nil && la.Date != nil && lb.Date != nil {
			d := int64(interp.Lerp(float64(*la.Date), float64(*lb.Date), t))
			l.Date = &d
		} else {
			l.Date = firstInt64(la, lb)
		}
		l.Type = snapStr(lightingType(la), lightingType(lb), t)
		l.UTCOffset = interp.LerpOpt(lightingOffset(la), lightingOffset(lb), t)
		out.Lighting = l
	}
	out.Atmosphere = snapBool(a.Atmosphere, b.Atmosphere, t)
	out.StarsEnabled = snapBool(a.StarsEnabled, b.StarsEnabled, t)

	wa, wb := a.Weather, b.Weather
	if wa != nil || wb != nil {
		w := &view.Weather{}
		w.Type = snapStr(weatherType(wa), weatherType(wb), t)
		w.CloudCover = interp.LerpOpt(weatherCloud(wa), weatherCloud(wb), t)
		w.Precipitation = interp.LerpOpt(weatherPrecip(wa), weatherPrecip(wb), t)
		out.Weather = w
	}

	eh.SetEnvironment(out)
	return nil
}

func lerpViewpoint(a, b view.Viewpoint, t float64) view.Viewpoint {
	out := view.Viewpoint{
		Scale:    interp.Lerp(a.Scale, b.Scale, t),
		Rotation: interp.Lerp(a.Rotation, b.Rotation, t),
	}
	switch {
	case a.Extent != nil && b.Extent != nil:
		out.Extent = &view.Extent{
			XMin: interp.Lerp(a.Extent.XMin, b.Extent.XMin, t),
			YMin: interp.Lerp(a.Extent.YMin, b.Extent.YMin, t),
			XMax: interp.Lerp(a.Extent.XMax, b.Extent.XMax, t),
			YMax: interp.Lerp(a.Extent.YMax, b.Extent.YMax, t),
		}
	case a.Extent != nil:
		e := *a.Extent
		out.Extent = &e
	case b.Extent != nil:
		e := *b.Extent
		out.Extent = &e
	}
	return out
}

func lerpCamera(a, b view.Camera, t float64) view.Camera {
	return view.Camera{
		X:       interp.Lerp(a.X, b.X, t),
		Y:       interp.Lerp(a.Y, b.Y, t),
		Z:       interp.Lerp(a.Z, b.Z, t),
		Heading: interp.Lerp(a.Heading, b.Heading, t),
		Tilt:    interp.Lerp(a.Tilt, b.Tilt, t),
	}
}

// slideCamera returns the slide's camera, or one synthesized from its
// 2D viewpoint for boundary interpolation.
func slideCamera(s *story.Slide, p DeriveParams) *view.Camera {
	if s.Camera != nil {
		cam := *s.Camera
		return &cam
	}
	if s.Viewpoint != nil {
		return deriveCamera(*s.Viewpoint, p)
	}
	return nil
}

// snapStr picks the categorical value: the next slide's as soon as
// progress leaves zero, the current one at exactly zero.
func snapStr(a, b *string, t float64) *string {
	if t > 0 && b != nil {
		return b
	}
	if a != nil {
		return a
	}
	return b
}

func snapBool(a, b *bool, t float64) *bool {
	if t > 0 && b != nil {
		return b
	}
	if a != nil {
		return a
	}
	return b
}

func lightingType(l *view.Lighting) *string {
	if l == nil {
		return nil
	}
	return l.Type
}

func lightingOffset(l *view.Lighting) *float64 {
	if l == nil {
		return nil
	}
	return l.UTCOffset
}

func firstInt64(a, b *view.Lighting) *int64 {
	if a != nil && a.Date != nil {
		d := *a.Date
		return &d
	}
	if b != nil && b.Date != nil {
		d := *b.Date
		return &d
	}
	return nil
}

func weatherType(w *view.Weather) *string {
	if w == nil {
		return nil
	}
	return w.Type
}

func weatherCloud(w *view.Weather) *float64 {
	if w == nil {
		return nil
	}
	return w.CloudCover
}

func weatherPrecip(w *view.Weather) *float64 {
	if w == nil {
		return nil
	}
	return w.Precipitation
}
