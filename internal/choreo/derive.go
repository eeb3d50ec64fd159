package choreo

import "github.com/ivlev/storymap/internal/view"

// DeriveParams tune the approximate 2D viewpoint derived from a 3D
// camera when interpolation needs two comparable 2D endpoints. This is
// a visual heuristic, not a projection law: the derived scale is
// inversely proportional to camera height and the extent is a
// fixed-size square around the camera's ground position.
type DeriveParams struct {
	// HalfWidth is the half-width of the derived extent square, in map units.
	HalfWidth float64
	// ScaleNumerator divided by camera height yields the derived scale.
	ScaleNumerator float64
}

// DefaultDeriveParams match the tuning the presentation was authored
// against.
var DefaultDeriveParams = DeriveParams{
	HalfWidth:      1000,
	ScaleNumerator: 5e8,
}

// DeriveViewpoint projects a 3D camera onto an approximate 2D viewpoint.
func DeriveViewpoint(cam view.Camera, p DeriveParams) view.Viewpoint {
	height := cam.Z
	if height < 1 {
		height = 1
	}
	return view.Viewpoint{
		Extent: &view.Extent{
			XMin: cam.X - p.HalfWidth,
			YMin: cam.Y - p.HalfWidth,
			XMax: cam.X + p.HalfWidth,
			YMax: cam.Y + p.HalfWidth,
		},
		Scale:    p.ScaleNumerator / height,
		Rotation: cam.Heading,
	}
}

// deriveCamera is the inverse synthesis: a level (tilt 0) camera hovering
// over a 2D viewpoint's center, used to interpolate across a 2D-3D
// boundary so the transition levels out instead of jumping.
func deriveCamera(vp view.Viewpoint, p DeriveParams) *view.Camera {
	if vp.Extent == nil {
		return nil
	}
	scale := vp.Scale
	if scale < 1 {
		scale = 1
	}
	return &view.Camera{
		X:       vp.Extent.CenterX(),
		Y:       vp.Extent.CenterY(),
		Z:       p.ScaleNumerator / scale,
		Heading: vp.Rotation,
		Tilt:    0,
	}
}
