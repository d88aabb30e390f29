package environ

import (
	"context"
	"time"
)

// Condition is a discrete ambient condition code.
type Condition int

const (
	ConditionUnknown Condition = iota
	ConditionClear
	ConditionPartlyCloudy
	ConditionCloudy
	ConditionFog
	ConditionDrizzle
	ConditionRain
	ConditionSnow
	ConditionThunderstorm
)

func (c Condition) String() string {
	switch c {
	case ConditionClear:
		return "clear"
	case ConditionPartlyCloudy:
		return "partly cloudy"
	case ConditionCloudy:
		return "cloudy"
	case ConditionFog:
		return "fog"
	case ConditionDrizzle:
		return "drizzle"
	case ConditionRain:
		return "rain"
	case ConditionSnow:
		return "snow"
	case ConditionThunderstorm:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

// Snapshot is best-effort auxiliary context. Once Valid it stays valid;
// a failed refresh leaves the previous snapshot untouched.
type Snapshot struct {
	Latitude    float64
	Longitude   float64
	HasCoords   bool
	Condition   Condition
	AmbientC    float64
	Valid       bool
	RefreshedAt time.Time
}

// ClockSource provides synchronized wall-clock time.
type ClockSource interface {
	Now(ctx context.Context) (time.Time, error)
}

// Locator resolves the device's approximate coordinates.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

// ConditionSource fetches the current ambient condition for coordinates.
type ConditionSource interface {
	Conditions(ctx context.Context, lat, lon float64) (Condition, float64, error)
}
