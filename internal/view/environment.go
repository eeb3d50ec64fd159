package view

// Lighting is the sun/illumination part of a view environment.
// All fields are optional; absent fields do not participate in merges.
type Lighting struct {
	Type      *string  `json:"type,omitempty"`
	Date      *int64   `json:"date,omitempty"` // unix milliseconds
	UTCOffset *float64 `json:"utcOffset,omitempty"`
}

// Weather is the atmospheric condition part of a view environment.
type Weather struct {
	Type          *string  `json:"type,omitempty"`
	CloudCover    *float64 `json:"cloudCover,omitempty"`    // 0..100
	Precipitation *float64 `json:"precipitation,omitempty"` // 0..1
}

// Environment is the full lighting/atmosphere/weather state of a 3D view.
type Environment struct {
	Lighting     *Lighting `json:"lighting,omitempty"`
	Atmosphere   *bool     `json:"atmosphere,omitempty"`
	StarsEnabled *bool     `json:"starsEnabled,omitempty"`
	Weather      *Weather  `json:"weather,omitempty"`
}

// Clone returns a deep copy.
func (env *Environment) Clone() *Environment {
	if env == nil {
		return nil
	}
	out := &Environment{}
	if env.Lighting != nil {
		l := *env.Lighting
		out.Lighting = &l
	}
	if env.Atmosphere != nil {
		a := *env.Atmosphere
		out.Atmosphere = &a
	}
	if env.StarsEnabled != nil {
		s := *env.StarsEnabled
		out.StarsEnabled = &s
	}
	if env.Weather != nil {
		w := *env.Weather
		out.Weather = &w
	}
	return out
}

// MergeEnvironment applies patch onto base field by field, leaving
// properties the patch does not mention untouched. Neither argument is
// mutated. A nil patch returns a clone of base.
func MergeEnvironment(base, patch *Environment) *Environment {
	out := base.Clone()
	if patch == nil {
		return out
	}
	if out == nil {
		out = &Environment{}
	}
	if patch.Lighting != nil {
		if out.Lighting == nil {
			out.Lighting = &Lighting{}
		}
		if patch.Lighting.Type != nil {
			out.Lighting.Type = patch.Lighting.Type
		}
		if patch.Lighting.Date != nil {
			out.Lighting.Date = patch.Lighting.Date
		}
		if patch.Lighting.UTCOffset != nil {
			out.Lighting.UTCOffset = patch.Lighting.UTCOffset
		}
	}
	if patch.Atmosphere != nil {
		out.Atmosphere = patch.Atmosphere
	}
	if patch.StarsEnabled != nil {
		out.StarsEnabled = patch.StarsEnabled
	}
	if patch.Weather != nil {
		if out.Weather == nil {
			out.Weather = &Weather{}
		}
		if patch.Weather.Type != nil {
			out.Weather.Type = patch.Weather.Type
		}
		if patch.Weather.CloudCover != nil {
			out.Weather.CloudCover = patch.Weather.CloudCover
		}
		if patch.Weather.Precipitation != nil {
			out.Weather.Precipitation = patch.Weather.Precipitation
		}
	}
	return out
}
