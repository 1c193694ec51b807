package amap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type DrivingQuery struct {
	Origin      string
	Destination string
	Strategy    int
}

// Path is the first route path of a driving reply, in provider units.
type Path struct {
	DurationSeconds float64
	DistanceMeters  float64
}

type Geocode struct {
	Location         string
	FormattedAddress string
	District         string
	City             string
	Province         string
}

type drivingResponse struct {
	Status flexString `json:"status"`
	Info   flexString `json:"info"`
	Route  *struct {
		Paths []struct {
			Duration flexNumber `json:"duration"`
			Distance flexNumber `json:"distance"`
		} `json:"paths"`
	} `json:"route"`
}

type geocodeResponse struct {
	Status   flexString `json:"status"`
	Info     flexString `json:"info"`
	Geocodes []struct {
		Location         flexString `json:"location"`
		FormattedAddress flexString `json:"formatted_address"`
		District         flexString `json:"district"`
		City             flexString `json:"city"`
		Province         flexString `json:"province"`
	} `json:"geocodes"`
}

// flexNumber decodes numbers the provider sends either bare or quoted.
// Empty strings, empty arrays and null leave it unset.
type flexNumber struct {
	value float64
	valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch s {
	case "null", "[]", `""`:
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("unquote number %s: %w", s, err)
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	n.value, n.valid = v, true
	return nil
}

// flexString decodes scalars as strings. Arrays and objects, which the
// provider uses for "no value", decode to "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*s = ""
		return nil
	}
	switch raw[0] {
	case '[', '{':
		*s = ""
		return nil
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	default:
		*s = flexString(raw)
		return nil
	}
}
