package dto

type LookupInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	// Strategy falls back to the configured route strategy when nil.
	Strategy *int `json:"strategy"`
}

type LookupOutput struct {
	Duration  float64 `json:"duration"`
	Distance  float64 `json:"distance"`
	Timestamp string  `json:"timestamp"`
}

type GeocodeInput struct {
	Address string `json:"address"`
}

type GeocodeOutput struct {
	Location         string `json:"location"`
	FormattedAddress string `json:"formatted_address"`
	District         string `json:"district"`
	City             string `json:"city"`
	Province         string `json:"province"`
}
