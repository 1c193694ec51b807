package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "trafficwatch/internal/platform/errors"
)

const TimestampLayout = "2006-01-02 15:04:05"

type Query struct {
	Origin      string
	Destination string
	Strategy    int
}

func (q Query) Validate() error {
	var missing []string
	if strings.TrimSpace(q.Origin) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(q.Destination) == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", apperrors.ErrInvalidInput, strings.Join(missing, " and "))
	}
	if q.Strategy < 0 {
		return fmt.Errorf("%w: strategy must not be negative", apperrors.ErrInvalidInput)
	}
	return nil
}

type Path struct {
	DurationSeconds float64
	DistanceMeters  float64
}

// Estimate is a one-shot lookup result, rounded for display.
type Estimate struct {
	DurationHours float64
	DistanceKm    float64
	At            time.Time
}

func NewEstimate(path Path, at time.Time) Estimate {
	return Estimate{
		DurationHours: round2(path.DurationSeconds / 3600),
		DistanceKm:    round2(path.DistanceMeters / 1000),
		At:            at,
	}
}

type Place struct {
	Location         string
	FormattedAddress string
	District         string
	City             string
	Province         string
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
