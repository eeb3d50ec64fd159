// Package viewtest provides in-memory fakes for the view capability
// interfaces, used by choreography and lifecycle tests.
package viewtest

import (
	"sync"
	"time"

	"github.com/ivlev/storymap/internal/view"
)

// GoToCall records one navigation request.
type GoToCall struct {
	Target view.GoToTarget
	Opts   view.GoToOptions
}

// FakeView implements view.View. Every GoTo resolves immediately; setting
// SupersedeNext makes the next call resolve as NavSuperseded instead.
type FakeView struct {
	mu            sync.Mutex
	Kind          view.ViewType
	VP            view.Viewpoint
	Ctr           view.Center
	FakeMap       *FakeMap
	Nav           *FakeNavigation
	Calls         []GoToCall
	SupersedeNext bool
}

func NewFakeView(kind view.ViewType) *FakeView {
	return &FakeView{Kind: kind, FakeMap: &FakeMap{}, Nav: &FakeNavigation{}}
}

func (v *FakeView) Type() view.ViewType { return v.Kind }

func (v *FakeView) GoTo(target view.GoToTarget, opts view.GoToOptions) <-chan view.NavResult {
	v.mu.Lock()
	v.Calls = append(v.Calls, GoToCall{Target: target, Opts: opts})
	result := view.NavCompleted
	if v.SupersedeNext {
		result = view.NavSuperseded
		v.SupersedeNext = false
	}
	// Navigation lands the view on its target so subsequent reads see it.
	if target.Viewpoint != nil {
		v.VP = target.Viewpoint.Clone()
	}
	v.mu.Unlock()

	ch := make(chan view.NavResult, 1)
	ch <- result
	close(ch)
	return ch
}

func (v *FakeView) Viewpoint() view.Viewpoint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.VP.Clone()
}

// SetViewpoint moves the view directly, bypassing GoTo bookkeeping.
func (v *FakeView) SetViewpoint(vp view.Viewpoint) {
	v.mu.Lock()
	v.VP = vp.Clone()
	v.mu.Unlock()
}

func (v *FakeView) Center() view.Center         { return v.Ctr }
func (v *FakeView) Map() view.Map               { return v.FakeMap }
func (v *FakeView) Navigation() view.Navigation { return v.Nav }

// LastCall returns the most recent GoTo, or nil if none happened.
func (v *FakeView) LastCall() *GoToCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.Calls) == 0 {
		return nil
	}
	c := v.Calls[len(v.Calls)-1]
	return &c
}

// CallCount returns how many GoTo calls the view has seen.
func (v *FakeView) CallCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.Calls)
}

// FakeSceneView is a FakeView with environment support, standing in for
// a 3D scene view.
type FakeSceneView struct {
	FakeView
	Env *view.Environment
}

func NewFakeSceneView() *FakeSceneView {
	return &FakeSceneView{FakeView: *NewFakeView(view.Type3D)}
}

func (v *FakeSceneView) Environment() *view.Environment { return v.Env }

func (v *FakeSceneView) SetEnvironment(env *view.Environment) { v.Env = env }

// FakeNavigation records interaction toggles.
type FakeNavigation struct {
	WheelZoom       bool
	Drag            bool
	DoubleClickZoom bool
}

func (n *FakeNavigation) SetWheelZoomEnabled(enabled bool)       { n.WheelZoom = enabled }
func (n *FakeNavigation) SetDragEnabled(enabled bool)            { n.Drag = enabled }
func (n *FakeNavigation) SetDoubleClickZoomEnabled(enabled bool) { n.DoubleClickZoom = enabled }

// FakeMap is an ordered layer collection.
type FakeMap struct {
	Items []view.Layer
}

func (m *FakeMap) Layers() []view.Layer {
	out := make([]view.Layer, len(m.Items))
	copy(out, m.Items)
	return out
}

func (m *FakeMap) Add(layer view.Layer, index int) {
	if index < 0 || index > len(m.Items) {
		index = len(m.Items)
	}
	m.Items = append(m.Items, nil)
	copy(m.Items[index+1:], m.Items[index:])
	m.Items[index] = layer
}

func (m *FakeMap) Remove(layer view.Layer) {
	for i, l := range m.Items {
		if l == layer {
			m.Items = append(m.Items[:i], m.Items[i+1:]...)
			return
		}
	}
}

func (m *FakeMap) IndexOf(layer view.Layer) int {
	for i, l := range m.Items {
		if l == layer {
			return i
		}
	}
	return -1
}

// FakeLayer is a plain visibility-only layer.
type FakeLayer struct {
	Name string

	mu  sync.Mutex
	vis bool
}

func NewFakeLayer(name string, visible bool) *FakeLayer {
	return &FakeLayer{Name: name, vis: visible}
}

func (l *FakeLayer) Title() string { return l.Name }

func (l *FakeLayer) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vis
}

func (l *FakeLayer) SetVisible(visible bool) {
	l.mu.Lock()
	l.vis = visible
	l.mu.Unlock()
}

// TrackState is a consistent snapshot of a FakeTrackLayer.
type TrackState struct {
	Visible    bool
	StartField string
	GroupField string
	Style      view.TrackStyle
}

// FakeTrackLayer implements view.TrackLayer. Clones inherit the name and
// remember their origin so tests can assert on the replacement cycle.
// The reload goroutine writes fields concurrently with test assertions,
// hence the snapshot accessors.
type FakeTrackLayer struct {
	Name       string
	ReadyDelay time.Duration
	ClonedFrom *FakeTrackLayer

	mu         sync.Mutex
	vis        bool
	startField string
	groupField string
	style      view.TrackStyle
	clones     int
}

func NewFakeTrackLayer(name, startField string) *FakeTrackLayer {
	return &FakeTrackLayer{Name: name, startField: startField}
}

func (l *FakeTrackLayer) Title() string { return l.Name }

func (l *FakeTrackLayer) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vis
}

func (l *FakeTrackLayer) SetVisible(visible bool) {
	l.mu.Lock()
	l.vis = visible
	l.mu.Unlock()
}

func (l *FakeTrackLayer) CloneLayer() view.TrackLayer {
	l.mu.Lock()
	l.clones++
	l.mu.Unlock()
	return &FakeTrackLayer{
		Name:       l.Name,
		ReadyDelay: l.ReadyDelay,
		ClonedFrom: l,
	}
}

func (l *FakeTrackLayer) WaitReady(timeout time.Duration) error {
	if l.ReadyDelay > 0 {
		time.Sleep(l.ReadyDelay)
	}
	return nil
}

func (l *FakeTrackLayer) TimeStartField() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startField
}

func (l *FakeTrackLayer) SetTimeStartField(field string) {
	l.mu.Lock()
	l.startField = field
	l.mu.Unlock()
}

func (l *FakeTrackLayer) SetTrackInfo(groupField string, style view.TrackStyle) {
	l.mu.Lock()
	l.groupField = groupField
	l.style = style
	l.mu.Unlock()
}

// CloneCount returns how many times the layer has been cloned.
func (l *FakeTrackLayer) CloneCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clones
}

// Snapshot returns a consistent view of the layer's mutable state.
func (l *FakeTrackLayer) Snapshot() TrackState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return TrackState{Visible: l.vis, StartField: l.startField, GroupField: l.groupField, Style: l.style}
}

// FakeTimeControl implements view.TimeControl.
type FakeTimeControl struct {
	IsReady                bool
	IsPlaying              bool
	FullStart, FullEnd     time.Time
	StopValue              int
	StopUnit               view.TimeUnit
	ExtentStart, ExtentEnd *time.Time
}

func NewFakeTimeControl(ready bool) *FakeTimeControl { return &FakeTimeControl{IsReady: ready} }

func (c *FakeTimeControl) Ready() bool   { return c.IsReady }
func (c *FakeTimeControl) Playing() bool { return c.IsPlaying }

func (c *FakeTimeControl) SetFullExtent(start, end time.Time) {
	c.FullStart, c.FullEnd = start, end
}

func (c *FakeTimeControl) SetStopInterval(value int, unit view.TimeUnit) {
	c.StopValue, c.StopUnit = value, unit
}

func (c *FakeTimeControl) SetExtent(start, end *time.Time) {
	c.ExtentStart, c.ExtentEnd = start, end
}

func (c *FakeTimeControl) Play() { c.IsPlaying = true }
func (c *FakeTimeControl) Stop() { c.IsPlaying = false }

// FakeContainer records the visual state set by the crossfade controller.
type FakeContainer struct {
	Hidden      bool
	Opacity     float64
	Interactive bool
}

func (c *FakeContainer) SetHidden(hidden bool)           { c.Hidden = hidden }
func (c *FakeContainer) SetOpacity(opacity float64)      { c.Opacity = opacity }
func (c *FakeContainer) SetInteractive(interactive bool) { c.Interactive = interactive }
