package weather

import (
	"fmt"
	"strings"
	"time"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	APIKey   string
	BaseURL  string
	Units    string
	Timeout  time.Duration
}

func NewProvider(s Settings) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", "openweather":
		return NewOpenWeatherClient(s.APIKey, s.BaseURL, s.Units, s.Timeout)
	case "openmeteo", "open-meteo", "open_meteo":
		return NewOpenMeteoClient("", "", s.Timeout), nil
	default:
		return nil, fmt.Errorf("weather provider not supported: %s", s.Provider)
	}
}
