package view

import "time"

// SurfaceID identifies one of the two fixed view surfaces.
type SurfaceID int

const (
	SurfacePrimary   SurfaceID = 0 // 2D web map, always present once initialized
	SurfaceSecondary SurfaceID = 1 // 3D web scene, created and destroyed on demand
)

// ViewType discriminates the rendering mode of a live view.
type ViewType string

const (
	Type2D ViewType = "2d"
	Type3D ViewType = "3d"
)

// Center is a geographic center point in degrees.
type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Extent is an axis-aligned bounding rectangle in map units.
type Extent struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// CenterX returns the horizontal midpoint of the extent.
func (e Extent) CenterX() float64 { return (e.XMin + e.XMax) / 2 }

// CenterY returns the vertical midpoint of the extent.
func (e Extent) CenterY() float64 { return (e.YMin + e.YMax) / 2 }

// Viewpoint describes a 2D map state: an optional extent rectangle,
// a scale and a rotation. Clone returns an independent copy so callers
// can mutate the result without touching the source.
type Viewpoint struct {
	Extent   *Extent `json:"extent,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
}

func (vp Viewpoint) Clone() Viewpoint {
	out := vp
	if vp.Extent != nil {
		e := *vp.Extent
		out.Extent = &e
	}
	return out
}

// Camera describes a 3D scene state: position with height, heading and tilt.
type Camera struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
	Tilt    float64 `json:"tilt"`
}

// GoToTarget carries either a 2D viewpoint or a 3D camera (or both,
// in which case the camera wins on 3D-capable views).
type GoToTarget struct {
	Viewpoint *Viewpoint `json:"viewpoint,omitempty"`
	Camera    *Camera    `json:"camera,omitempty"`
}

// GoToOptions control a navigation call.
type GoToOptions struct {
	Animate  bool
	Duration time.Duration
}

// NavResult is the outcome of an asynchronous navigation. A navigation
// superseded by a newer one resolves as NavSuperseded; that outcome is
// expected under rapid scroll updates and is never an error.
type NavResult int

const (
	NavCompleted NavResult = iota
	NavSuperseded
)

func (r NavResult) String() string {
	switch r {
	case NavCompleted:
		return "completed"
	case NavSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// TimeUnit is the granularity of a time-window step.
type TimeUnit string

const (
	UnitMilliseconds TimeUnit = "milliseconds"
	UnitSeconds      TimeUnit = "seconds"
	UnitMinutes      TimeUnit = "minutes"
	UnitHours        TimeUnit = "hours"
	UnitDays         TimeUnit = "days"
	UnitWeeks        TimeUnit = "weeks"
	UnitMonths       TimeUnit = "months"
	UnitYears        TimeUnit = "years"
)
