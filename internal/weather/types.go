package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by providers that need a credential and have none.
var ErrMissingAPIKey = errors.New("weather api key is empty")

// Provider fetches current conditions for a city.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string) (*Report, error)
}

// Report is the typed current-conditions payload. Timestamps are unix seconds.
type Report struct {
	Provider       string  `json:"provider"`
	City           string  `json:"city"`
	Country        string  `json:"country"`
	Time           int64   `json:"dt"`
	Sunrise        int64   `json:"sunrise"`
	Sunset         int64   `json:"sunset"`
	TimezoneOffset int     `json:"timezone_offset"`
	Temperature    float64 `json:"temperature"`
	Humidity       int     `json:"humidity"`
	WindSpeed      float64 `json:"wind_speed"`
	Condition      string  `json:"condition"`
	Description    string  `json:"description"`
}

// Location returns the fixed zone described by the report's UTC offset.
func (r *Report) Location() *time.Location {
	return time.FixedZone(r.City, r.TimezoneOffset)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s bad status: %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s bad status: %d body=%s", e.Provider, e.StatusCode, e.Body)
}

// SchemaError is returned when a 2xx payload lacks required fields.
type SchemaError struct {
	Provider string
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s response missing fields: %s", e.Provider, strings.Join(e.Missing, ", "))
}
