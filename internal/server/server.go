// Package server exposes the choreography engine over HTTP: the page
// embed posts navigation and scroll events in, long-polls view commands
// out, and reports renderer state back.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/ivlev/storymap/internal/bridge"
	"github.com/ivlev/storymap/internal/config"
	"github.com/ivlev/storymap/internal/nav"
	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/view"
)

// Server wires the HTTP surface of the engine.
type Server struct {
	cfg       Config
	app       *fiber.App
	hub       *bridge.Hub
	presenter *nav.Presenter
	story     *story.Story
	appCfg    *config.Config
	primary   *bridge.Surface
	factory   *bridge.Factory
}

// New builds the fiber app and its routes.
func New(cfg Config, hub *bridge.Hub, p *nav.Presenter, st *story.Story, appCfg *config.Config, primary *bridge.Surface, factory *bridge.Factory) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "storymap",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	s := &Server{cfg: cfg, app: app, hub: hub, presenter: p, story: st, appCfg: appCfg, primary: primary, factory: factory}

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready", "slides": len(st.Slides)})
	})

	api := app.Group("/api/v1")
	api.Get("/story", s.getStory)
	api.Get("/config", s.getConfig)
	api.Get("/session", s.getSession)
	api.Post("/nav/hash", s.postHash)
	api.Post("/nav/message", s.postMessage)
	api.Get("/events", s.getEvents)
	api.Post("/state", s.postState)
	api.Post("/layers/ready", s.postLayerReady)

	return s
}

// Listen blocks serving on the configured port.
func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	log.Printf("[*] storymap server listening on %s (run %s)", addr, s.presenter.RunID())
	return s.app.Listen(addr)
}

// Shutdown stops the app gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) getStory(c fiber.Ctx) error {
	return c.JSON(s.story)
}

// getConfig hands the renderer what it needs to bootstrap: surface
// identities, initial view and playback tuning. The story path stays
// server-side.
func (s *Server) getConfig(c fiber.Ctx) error {
	return c.JSON(s.appCfg)
}

func (s *Server) getSession(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"runId":    s.presenter.RunID(),
		"embedded": s.presenter.Embedded(),
	})
}

func (s *Server) postHash(c fiber.Ctx) error {
	var req struct {
		Fragment string `json:"fragment"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	s.presenter.HandleHash(req.Fragment)
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) postMessage(c fiber.Ctx) error {
	var msg nav.Message
	if err := json.Unmarshal(c.Body(), &msg); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	s.presenter.HandleMessage(msg)
	return c.JSON(fiber.Map{"status": "ok"})
}

// getEvents long-polls the command stream. The renderer passes the last
// sequence number it has seen and receives everything newer.
func (s *Server) getEvents(c fiber.Ctx) error {
	since, err := strconv.ParseInt(c.Query("since", "0"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid cursor"})
	}
	events := s.hub.Since(since, time.Duration(s.cfg.PollWait)*time.Second)
	if events == nil {
		events = []bridge.Event{}
	}
	return c.JSON(fiber.Map{"events": events})
}

// postState ingests a renderer state report for one surface.
func (s *Server) postState(c fiber.Ctx) error {
	var st bridge.State
	if err := json.Unmarshal(c.Body(), &st); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	switch st.Surface {
	case view.SurfacePrimary:
		s.primary.ApplyState(st)
	case view.SurfaceSecondary:
		sec := s.factory.Secondary()
		if sec == nil {
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "secondary surface not created"})
		}
		sec.ApplyState(st)
	default:
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown surface"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) postLayerReady(c fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.Title == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "layer title required"})
	}
	s.hub.AckLayer(req.Title)
	return c.JSON(fiber.Map{"status": "ok"})
}
