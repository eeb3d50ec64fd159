package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/storymap/internal/bridge"
	"github.com/ivlev/storymap/internal/choreo"
	"github.com/ivlev/storymap/internal/config"
	"github.com/ivlev/storymap/internal/nav"
	"github.com/ivlev/storymap/internal/scene"
	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

func newTestServer(t *testing.T) (*Server, *bridge.Hub) {
	t.Helper()
	st := &story.Story{Slides: []story.Slide{
		{Maps: []view.SurfaceID{0}, Viewpoint: &view.Viewpoint{Extent: &view.Extent{XMax: 10, YMax: 10}, Scale: 100000}},
		{Maps: []view.SurfaceID{0}, Viewpoint: &view.Viewpoint{Extent: &view.Extent{XMax: 20, YMax: 20}, Scale: 50000}},
	}}

	hub := bridge.NewHub()
	primary := bridge.NewSurface(hub, view.SurfacePrimary, view.Type2D)
	primarySurface := primary.Build()
	factory := bridge.NewFactory(hub)

	m := scene.NewManager(func() view.View { return primarySurface.View }, factory)
	t.Cleanup(m.Shutdown)

	p := nav.NewPresenter(st, primarySurface, m, choreo.New(500*time.Millisecond, "extent"))
	cfg := Config{Port: 3000, ReadTimeout: 5, WriteTimeout: 5, PollWait: 0}
	return New(cfg, hub, p, st, config.Default(), primary, factory), hub
}

func request(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func TestHealthProbes(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := request(t, s, "GET", "/health/live", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("liveness probe returned %d", resp.StatusCode)
	}
	resp, body := request(t, s, "GET", "/health/ready", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("readiness probe returned %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "slides") {
		t.Error("readiness probe should report the slide count")
	}
}

func TestGetStory(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := request(t, s, "GET", "/api/v1/story", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("story endpoint returned %d", resp.StatusCode)
	}
	var st story.Story
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("story response is not valid json: %v", err)
	}
	if len(st.Slides) != 2 {
		t.Errorf("expected 2 slides, got %d", len(st.Slides))
	}
}

func TestGetConfigOmitsStoryPath(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := request(t, s, "GET", "/api/v1/config", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("config endpoint returned %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "mapDiv") {
		t.Error("config response should carry the surface container ids")
	}
	if strings.Contains(string(body), "storyPath") {
		t.Error("the story path is server-side only")
	}
}

func TestPostHashEmitsNavigation(t *testing.T) {
	s, hub := newTestServer(t)

	resp, _ := request(t, s, "POST", "/api/v1/nav/hash", `{"fragment":"#1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hash endpoint returned %d", resp.StatusCode)
	}

	events := hub.Since(0, 0)
	var sawGoTo bool
	for _, e := range events {
		if e.Kind == "goTo" {
			sawGoTo = true
		}
	}
	if !sawGoTo {
		t.Error("hash navigation must emit a goTo command")
	}
}

func TestPostMessageRejectsBadJSON(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := request(t, s, "POST", "/api/v1/nav/message", "{not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestEventsCursor(t *testing.T) {
	s, hub := newTestServer(t)
	hub.Publish(view.SurfacePrimary, "timePlay", nil)
	hub.Publish(view.SurfacePrimary, "timeStop", nil)

	resp, body := request(t, s, "GET", "/api/v1/events?since=1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events endpoint returned %d", resp.StatusCode)
	}
	var out struct {
		Events []bridge.Event `json:"events"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("events response is not valid json: %v", err)
	}
	if len(out.Events) != 1 || out.Events[0].Kind != "timeStop" {
		t.Errorf("cursor must skip consumed events, got %v", out.Events)
	}

	resp, _ = request(t, s, "GET", "/api/v1/events?since=nope", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad cursor, got %d", resp.StatusCode)
	}
}

func TestPostStateUpdatesPrimary(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := request(t, s, "POST", "/api/v1/state",
		`{"surface":0,"viewpoint":{"scale":77000},"center":{"latitude":59.9,"longitude":10.7},"timeReady":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state endpoint returned %d", resp.StatusCode)
	}
	if got := s.primary.Build().View.Viewpoint().Scale; got != 77000 {
		t.Errorf("state report must update the mirrored viewpoint, got %f", got)
	}
}

func TestPostStateSecondaryBeforeCreate(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := request(t, s, "POST", "/api/v1/state", `{"surface":1,"viewpoint":{"scale":1}}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 before the secondary exists, got %d", resp.StatusCode)
	}
}

func TestPostLayerReadyRequiresTitle(t *testing.T) {
	s, _ := newTestServer(t)

	resp, _ := request(t, s, "POST", "/api/v1/layers/ready", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing title, got %d", resp.StatusCode)
	}
	resp, _ = request(t, s, "POST", "/api/v1/layers/ready", `{"title":"expedition-track"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for a valid ack, got %d", resp.StatusCode)
	}
}
