// Package crossfade blends the two view surfaces as a function of
// transition progress, toggling visibility and pointer ownership and
// keeping the viewpoints synchronized through the band.
package crossfade

import (
	"log"

	"github.com/ivlev/storymap/internal/interp"
	"github.com/ivlev/storymap/internal/scene"
	"github.com/ivlev/storymap/internal/view"
)

// Visibility hysteresis: both containers stay visible between the two
// thresholds, pulled loosely inward from 0 and 1 to avoid flicker at
// the exact edges.
const (
	hideToBelow   = 0.2
	hideFromAbove = 0.8
	pointerSplit  = 0.5
)

// Controller drives one crossfade between the primary surface and the
// scene-managed secondary surface.
type Controller struct {
	primary *view.Surface
	scenes  *scene.Manager
}

func NewController(primary *view.Surface, scenes *scene.Manager) *Controller {
	return &Controller{primary: primary, scenes: scenes}
}

// Crossfade applies the blend state for progress t between the "from"
// and "to" surfaces. While the transition is strictly inside the band
// and both views exist, a one-shot viewpoint sync carries the "from"
// view's position over to the "to" view.
func (c *Controller) Crossfade(from, to view.SurfaceID, t float64) {
	t = interp.Clamp01(t)

	// Entering or leaving the secondary surface keeps it alive for the
	// whole band.
	if (to == view.SurfaceSecondary && t > 0) || (from == view.SurfaceSecondary && t < 1) {
		if _, err := c.scenes.Ensure(); err != nil {
			log.Printf("[!] crossfade could not ensure secondary view: %v", err)
		}
	}

	fromSurf := c.surface(from)
	toSurf := c.surface(to)

	// Pointer events belong to whichever side is at least half opaque;
	// the tie at exactly 0.5 goes to the destination. Each side is
	// applied independently: a missing counterpart (secondary still
	// absent at the band edge) must not leave the other side stale.
	toOwns := t >= pointerSplit
	if fromSurf != nil {
		fromSurf.Container.SetHidden(t > hideFromAbove)
		fromSurf.Container.SetOpacity(1 - t)
		fromSurf.Container.SetInteractive(!toOwns)
	}
	if toSurf != nil {
		toSurf.Container.SetHidden(t < hideToBelow)
		toSurf.Container.SetOpacity(t)
		toSurf.Container.SetInteractive(toOwns)
	}
	if fromSurf == nil || toSurf == nil {
		return
	}

	if t > 0 && t < 1 && fromSurf.View != nil && toSurf.View != nil {
		c.scenes.Syncer().Sync(fromSurf.View, toSurf.View)
	}
}

func (c *Controller) surface(id view.SurfaceID) *view.Surface {
	if id == view.SurfacePrimary {
		return c.primary
	}
	return c.scenes.Surface()
}
