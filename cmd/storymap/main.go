package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/storymap/internal/bridge"
	"github.com/ivlev/storymap/internal/choreo"
	"github.com/ivlev/storymap/internal/config"
	"github.com/ivlev/storymap/internal/nav"
	"github.com/ivlev/storymap/internal/scene"
	"github.com/ivlev/storymap/internal/server"
	"github.com/ivlev/storymap/internal/story"
	"github.com/ivlev/storymap/internal/system"
	"github.com/ivlev/storymap/internal/view"
)

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "config.yaml", "path to the presentation config")
	storyPtr := flag.String("story", "", "story file, URL or directory (overrides the config)")
	portPtr := flag.Int("port", 0, "listen port (overrides STORYMAP_PORT)")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] config error: %v", err)
	}

	storyPath := cfg.StoryPath
	if *storyPtr != "" {
		storyPath = *storyPtr
	}
	if fi, err := os.Stat(storyPath); err == nil && fi.IsDir() {
		latest, err := system.FindLatestStory(storyPath)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		storyPath = latest
		fmt.Printf("[*] selected story: %s\n", storyPath)
	}

	st, err := story.Load(storyPath)
	if err != nil {
		log.Fatalf("[-] story error: %v", err)
	}
	fmt.Printf("[*] loaded %d slides from %s\n", len(st.Slides), storyPath)

	srvCfg, err := server.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("[-] server config error: %v", err)
	}
	if *portPtr != 0 {
		srvCfg.Port = *portPtr
	}

	hub := bridge.NewHub()
	primary := bridge.NewSurface(hub, view.SurfacePrimary, surfaceType(cfg.Primary.Type))
	primarySurface := primary.Build()
	factory := bridge.NewFactory(hub)

	scenes := scene.NewManager(func() view.View { return primarySurface.View }, factory)
	presenter := nav.NewPresenter(st, primarySurface, scenes, choreo.New(cfg.GoToDuration(), cfg.FitMode))

	if cfg.DisableNavigation {
		n := primarySurface.View.Navigation()
		n.SetWheelZoomEnabled(false)
		n.SetDragEnabled(false)
		n.SetDoubleClickZoomEnabled(false)
		fmt.Printf("[*] user navigation disabled\n")
	}

	srv := server.New(srvCfg, hub, presenter, st, cfg, primary, factory)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Listen)
	g.Go(func() error {
		<-ctx.Done()
		scenes.Shutdown()
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("[-] server error: %v", err)
	}
	fmt.Printf("[+++] storymap run %s finished\n", presenter.RunID())
}

// surfaceType maps the config surface kind onto the view type.
func surfaceType(kind string) view.ViewType {
	if kind == "web-scene" {
		return view.Type3D
	}
	return view.Type2D
}
