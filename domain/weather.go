package domain

import "time"

type WeatherReading struct {
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// WeatherContext is the snapshot stored alongside a weather-based record.
type WeatherContext struct {
	Location    string  `json:"location,omitempty"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Bucket      string  `json:"bucket,omitempty"`
}
