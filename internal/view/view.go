// Package view declares the capability interfaces the choreography engine
// expects from a mapping engine. The engine itself (rendering, camera model,
// layer loading) lives outside this repository; anything that can satisfy
// these interfaces can be driven.
package view

import "time"

// View is one live map or scene view.
//
// GoTo is asynchronous and fire-and-forget: the returned channel resolves
// once with the navigation outcome, and a navigation superseded by a newer
// GoTo on the same view resolves as NavSuperseded. Callers are free to
// ignore the channel.
type View interface {
	Type() ViewType
	GoTo(target GoToTarget, opts GoToOptions) <-chan NavResult
	Viewpoint() Viewpoint
	Center() Center
	Map() Map
	Navigation() Navigation
}

// EnvironmentHolder is implemented by views with 3D environment support.
// 2D views simply do not implement it; environment choreography no-ops
// for them.
type EnvironmentHolder interface {
	Environment() *Environment
	SetEnvironment(env *Environment)
}

// Map is a view's ordered layer collection.
type Map interface {
	Layers() []Layer
	Add(layer Layer, index int)
	Remove(layer Layer)
	IndexOf(layer Layer) int
}

// Layer is a single operational layer.
type Layer interface {
	Title() string
	Visible() bool
	SetVisible(visible bool)
}

// TrackLayer is a time-aware layer that supports the full replace cycle
// used by track-renderer choreography: clone, wait for the clone to load,
// reapply time and track configuration.
type TrackLayer interface {
	Layer
	CloneLayer() TrackLayer
	// WaitReady blocks until the layer has finished loading or the
	// timeout elapses.
	WaitReady(timeout time.Duration) error
	TimeStartField() string
	SetTimeStartField(field string)
	SetTrackInfo(groupField string, style TrackStyle)
}

// TrackStyle carries track-trail styling parameters.
type TrackStyle struct {
	Color      string  `json:"color,omitempty"`
	TrailWidth float64 `json:"trailWidth,omitempty"`
	MaxPoints  int     `json:"maxPoints,omitempty"`
}

// Navigation exposes the user-interaction toggles of a view.
type Navigation interface {
	SetWheelZoomEnabled(enabled bool)
	SetDragEnabled(enabled bool)
	SetDoubleClickZoomEnabled(enabled bool)
}

// TimeControl is the time-slider widget attached to a view.
type TimeControl interface {
	Ready() bool
	Playing() bool
	// SetFullExtent sets the full allowable time window.
	SetFullExtent(start, end time.Time)
	// SetStopInterval sets the step granularity.
	SetStopInterval(value int, unit TimeUnit)
	// SetExtent positions the current extent. A nil bound is left open.
	SetExtent(start, end *time.Time)
	Play()
	Stop()
}

// Container is the DOM-side box a surface renders into. Opacity,
// visibility and pointer-interaction ownership are driven by the
// crossfade controller.
type Container interface {
	SetHidden(hidden bool)
	SetOpacity(opacity float64)
	SetInteractive(interactive bool)
}

// Surface bundles one of the two view slots. View is nil until the
// underlying engine reports the view ready; TimeControl may be nil for
// surfaces without a time widget. Readers must tolerate both.
type Surface struct {
	ID          SurfaceID
	Container   Container
	View        View
	TimeControl TimeControl
}
