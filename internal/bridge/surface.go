package bridge

import (
	"errors"
	"sync"
	"time"

	"github.com/ivlev/storymap/internal/view"
)

// goToPayload is the wire shape of a navigation command.
type goToPayload struct {
	Target     view.GoToTarget `json:"target"`
	Animate    bool            `json:"animate"`
	DurationMs int64           `json:"durationMs"`
}

// containerPayload mirrors the crossfade-driven container state.
type containerPayload struct {
	Hidden      *bool    `json:"hidden,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	Interactive *bool    `json:"interactive,omitempty"`
}

// LayerState is the renderer's report of one layer.
type LayerState struct {
	Title      string `json:"title"`
	Visible    bool   `json:"visible"`
	Track      bool   `json:"track"`
	StartField string `json:"startField,omitempty"`
}

// State is the renderer's report of one surface.
type State struct {
	Surface   view.SurfaceID `json:"surface"`
	Viewpoint view.Viewpoint `json:"viewpoint"`
	Center    view.Center    `json:"center"`
	Layers    []LayerState   `json:"layers,omitempty"`
	TimeReady bool           `json:"timeReady"`
}

// Surface is a command-emitting implementation of one view slot.
type Surface struct {
	hub  *Hub
	id   view.SurfaceID
	kind view.ViewType

	mu        sync.Mutex
	vp        view.Viewpoint
	center    view.Center
	env       *view.Environment
	layers    []view.Layer
	timeReady bool
	playing   bool
	pending   chan view.NavResult
}

// NewSurface creates the bridge surface for one slot. The 3D slot gets
// environment support.
func NewSurface(hub *Hub, id view.SurfaceID, kind view.ViewType) *Surface {
	return &Surface{hub: hub, id: id, kind: kind}
}

// Build assembles the view.Surface handle the engine components share.
func (s *Surface) Build() *view.Surface {
	var v view.View = (*surfaceView)(s)
	if s.kind == view.Type3D {
		v = (*sceneView)(s)
	}
	return &view.Surface{
		ID:          s.id,
		Container:   (*surfaceContainer)(s),
		View:        v,
		TimeControl: (*surfaceTimeControl)(s),
	}
}

// ApplyState ingests a renderer state report.
func (s *Surface) ApplyState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp = st.Viewpoint.Clone()
	s.center = st.Center
	s.timeReady = st.TimeReady
	if st.Layers != nil {
		layers := make([]view.Layer, 0, len(st.Layers))
		for _, ls := range st.Layers {
			if ls.Track {
				layers = append(layers, &surfaceTrackLayer{
					surfaceLayer: surfaceLayer{s: s, title: ls.Title, visible: ls.Visible},
					startField:   ls.StartField,
				})
			} else {
				layers = append(layers, &surfaceLayer{s: s, title: ls.Title, visible: ls.Visible})
			}
		}
		s.layers = layers
	}
}

// surfaceView implements view.View for the 2D slot.
type surfaceView Surface

func (v *surfaceView) Type() view.ViewType { return (*Surface)(v).kind }

func (v *surfaceView) GoTo(target view.GoToTarget, opts view.GoToOptions) <-chan view.NavResult {
	s := (*Surface)(v)
	ch := make(chan view.NavResult, 1)

	s.mu.Lock()
	// A new navigation supersedes the outstanding one.
	if s.pending != nil {
		s.pending <- view.NavSuperseded
		close(s.pending)
	}
	if target.Viewpoint != nil {
		s.vp = target.Viewpoint.Clone()
	}
	if opts.Animate && opts.Duration > 0 {
		s.pending = ch
		pending := ch
		time.AfterFunc(opts.Duration, func() {
			s.mu.Lock()
			if s.pending == pending {
				s.pending = nil
				pending <- view.NavCompleted
				close(pending)
			}
			s.mu.Unlock()
		})
	} else {
		s.pending = nil
		ch <- view.NavCompleted
		close(ch)
	}
	s.mu.Unlock()

	s.hub.Publish(s.id, "goTo", goToPayload{
		Target:     target,
		Animate:    opts.Animate,
		DurationMs: opts.Duration.Milliseconds(),
	})
	return ch
}

func (v *surfaceView) Viewpoint() view.Viewpoint {
	s := (*Surface)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.Clone()
}

func (v *surfaceView) Center() view.Center {
	s := (*Surface)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

func (v *surfaceView) Map() view.Map               { return (*surfaceMap)(v) }
func (v *surfaceView) Navigation() view.Navigation { return (*surfaceNavigation)(v) }

// sceneView adds environment support for the 3D slot.
type sceneView Surface

func (v *sceneView) Type() view.ViewType { return (*Surface)(v).kind }

func (v *sceneView) GoTo(target view.GoToTarget, opts view.GoToOptions) <-chan view.NavResult {
	return (*surfaceView)(v).GoTo(target, opts)
}

func (v *sceneView) Viewpoint() view.Viewpoint   { return (*surfaceView)(v).Viewpoint() }
func (v *sceneView) Center() view.Center         { return (*surfaceView)(v).Center() }
func (v *sceneView) Map() view.Map               { return (*surfaceMap)(v) }
func (v *sceneView) Navigation() view.Navigation { return (*surfaceNavigation)(v) }

func (v *sceneView) Environment() *view.Environment {
	s := (*Surface)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Clone()
}

func (v *sceneView) SetEnvironment(env *view.Environment) {
	s := (*Surface)(v)
	s.mu.Lock()
	s.env = env.Clone()
	s.mu.Unlock()
	s.hub.Publish(s.id, "environment", env)
}

// surfaceMap exposes the renderer-reported layers.
type surfaceMap Surface

func (m *surfaceMap) Layers() []view.Layer {
	s := (*Surface)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]view.Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

func (m *surfaceMap) Add(layer view.Layer, index int) {
	s := (*Surface)(m)
	s.mu.Lock()
	if index < 0 || index > len(s.layers) {
		index = len(s.layers)
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[index+1:], s.layers[index:])
	s.layers[index] = layer
	s.mu.Unlock()
	s.hub.Publish(s.id, "layerAdd", map[string]any{"title": layer.Title(), "index": index})
}

func (m *surfaceMap) Remove(layer view.Layer) {
	s := (*Surface)(m)
	s.mu.Lock()
	for i, l := range s.layers {
		if l == layer {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.hub.Publish(s.id, "layerRemove", map[string]any{"title": layer.Title()})
}

func (m *surfaceMap) IndexOf(layer view.Layer) int {
	s := (*Surface)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.layers {
		if l == layer {
			return i
		}
	}
	return -1
}

// surfaceLayer publishes visibility changes.
type surfaceLayer struct {
	s       *Surface
	title   string
	visible bool
}

func (l *surfaceLayer) Title() string { return l.title }

func (l *surfaceLayer) Visible() bool {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.visible
}

func (l *surfaceLayer) SetVisible(visible bool) {
	l.s.mu.Lock()
	l.visible = visible
	l.s.mu.Unlock()
	l.s.hub.Publish(l.s.id, "layerVisibility", map[string]any{"title": l.title, "visible": visible})
}

// surfaceTrackLayer adds the track replace cycle. WaitReady blocks on
// the renderer's layer acknowledgement.
type surfaceTrackLayer struct {
	surfaceLayer
	startField string
}

func (l *surfaceTrackLayer) CloneLayer() view.TrackLayer {
	return &surfaceTrackLayer{
		surfaceLayer: surfaceLayer{s: l.s, title: l.title},
		startField:   l.startField,
	}
}

func (l *surfaceTrackLayer) WaitReady(timeout time.Duration) error {
	select {
	case <-l.s.hub.layerAck(l.title):
		return nil
	case <-time.After(timeout):
		return errors.New("timed out waiting for layer ready")
	}
}

func (l *surfaceTrackLayer) TimeStartField() string {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.startField
}

func (l *surfaceTrackLayer) SetTimeStartField(field string) {
	l.s.mu.Lock()
	l.startField = field
	l.s.mu.Unlock()
	l.s.hub.Publish(l.s.id, "layerTimeInfo", map[string]any{"title": l.title, "startField": field})
}

func (l *surfaceTrackLayer) SetTrackInfo(groupField string, style view.TrackStyle) {
	l.s.hub.Publish(l.s.id, "layerTrackInfo", map[string]any{
		"title":      l.title,
		"groupField": groupField,
		"style":      style,
	})
}

// surfaceNavigation publishes interaction toggles.
type surfaceNavigation Surface

func (n *surfaceNavigation) SetWheelZoomEnabled(enabled bool) {
	(*Surface)(n).hub.Publish((*Surface)(n).id, "navWheelZoom", enabled)
}

func (n *surfaceNavigation) SetDragEnabled(enabled bool) {
	(*Surface)(n).hub.Publish((*Surface)(n).id, "navDrag", enabled)
}

func (n *surfaceNavigation) SetDoubleClickZoomEnabled(enabled bool) {
	(*Surface)(n).hub.Publish((*Surface)(n).id, "navDoubleClickZoom", enabled)
}

// surfaceTimeControl publishes time-slider commands.
type surfaceTimeControl Surface

func (c *surfaceTimeControl) Ready() bool {
	s := (*Surface)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeReady
}

func (c *surfaceTimeControl) Playing() bool {
	s := (*Surface)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (c *surfaceTimeControl) SetFullExtent(start, end time.Time) {
	s := (*Surface)(c)
	s.hub.Publish(s.id, "timeFullExtent", map[string]int64{"start": start.UnixMilli(), "end": end.UnixMilli()})
}

func (c *surfaceTimeControl) SetStopInterval(value int, unit view.TimeUnit) {
	s := (*Surface)(c)
	s.hub.Publish(s.id, "timeStops", map[string]any{"value": value, "unit": unit})
}

func (c *surfaceTimeControl) SetExtent(start, end *time.Time) {
	s := (*Surface)(c)
	payload := map[string]*int64{}
	if start != nil {
		v := start.UnixMilli()
		payload["start"] = &v
	}
	if end != nil {
		v := end.UnixMilli()
		payload["end"] = &v
	}
	s.hub.Publish(s.id, "timeExtent", payload)
}

func (c *surfaceTimeControl) Play() {
	s := (*Surface)(c)
	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()
	s.hub.Publish(s.id, "timePlay", nil)
}

func (c *surfaceTimeControl) Stop() {
	s := (*Surface)(c)
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
	s.hub.Publish(s.id, "timeStop", nil)
}

// surfaceContainer publishes container state.
type surfaceContainer Surface

func (c *surfaceContainer) SetHidden(hidden bool) {
	h := hidden
	(*Surface)(c).hub.Publish((*Surface)(c).id, "container", containerPayload{Hidden: &h})
}

func (c *surfaceContainer) SetOpacity(opacity float64) {
	o := opacity
	(*Surface)(c).hub.Publish((*Surface)(c).id, "container", containerPayload{Opacity: &o})
}

func (c *surfaceContainer) SetInteractive(interactive bool) {
	i := interactive
	(*Surface)(c).hub.Publish((*Surface)(c).id, "container", containerPayload{Interactive: &i})
}
