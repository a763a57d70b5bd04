// Package solar decides between day and night from the sun's position.
package solar

import (
	"time"

	"github.com/darkawower/duskctl/internal/config"
	"github.com/nathan-osman/go-sunrise"
)

// Thresholds are sun elevations in degrees. Below Night it is night, at or
// above Day it is day. In between is the transition.
type Thresholds struct {
	Day   float64
	Night float64
}

// Elevation returns the sun elevation in degrees at t.
func Elevation(t time.Time, lat, lon float64) float64 {
	return sunrise.Elevation(lat, lon, t)
}

// ModeAt returns the mode for time t. During the transition the previous
// mode is kept; an empty previous resolves to day once the sun is above the
// night threshold.
func ModeAt(t time.Time, lat, lon float64, th Thresholds, previous config.Mode) config.Mode {
	return modeFor(Elevation(t, lat, lon), th, previous)
}

// InTransition reports whether the sun is between the two thresholds.
func InTransition(t time.Time, lat, lon float64, th Thresholds) bool {
	e := Elevation(t, lat, lon)
	return e >= th.Night && e < th.Day
}

func modeFor(elevation float64, th Thresholds, previous config.Mode) config.Mode {
	switch {
	case elevation < th.Night:
		return config.ModeNight
	case elevation >= th.Day:
		return config.ModeDay
	case previous != "":
		return previous
	default:
		return config.ModeDay
	}
}

// Progress returns 0 at night, 1 at day and the linear position of the sun
// between the thresholds otherwise.
func Progress(t time.Time, lat, lon float64, th Thresholds) float64 {
	return progressFor(Elevation(t, lat, lon), th)
}

func progressFor(elevation float64, th Thresholds) float64 {
	switch {
	case elevation < th.Night:
		return 0
	case elevation >= th.Day:
		return 1
	default:
		return (th.Night - elevation) / (th.Night - th.Day)
	}
}

// Temperature interpolates between tempNight and tempDay by progress.
func Temperature(progress float64, tempNight, tempDay int) int {
	return int((1-progress)*float64(tempNight) + progress*float64(tempDay))
}

// SunTimes returns sunrise and sunset for the UTC date of t. Both are zero
// during polar day or night.
func SunTimes(t time.Time, lat, lon float64) (rise, set time.Time) {
	u := t.UTC()
	return sunrise.SunriseSunset(lat, lon, u.Year(), u.Month(), u.Day())
}
