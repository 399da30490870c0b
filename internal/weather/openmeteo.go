package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultOpenMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"
	defaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

// OpenMeteoClient is a keyless alternative to OpenWeather. Cities are resolved
// through the Open-Meteo geocoding API before the forecast call.
type OpenMeteoClient struct {
	forecastURL  string
	geocodingURL string
	client       *http.Client
}

func NewOpenMeteoClient(forecastURL, geocodingURL string, timeout time.Duration) *OpenMeteoClient {
	if strings.TrimSpace(forecastURL) == "" {
		forecastURL = defaultOpenMeteoForecastURL
	}
	if strings.TrimSpace(geocodingURL) == "" {
		geocodingURL = defaultOpenMeteoGeocodingURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type openMeteoResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          *struct {
		Time             int64    `json:"time"`
		Temperature      *float64 `json:"temperature_2m"`
		RelativeHumidity *float64 `json:"relative_humidity_2m"`
		WindSpeed        *float64 `json:"wind_speed_10m"`
		WeatherCode      *int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

type openMeteoGeoResponse struct {
	Results []openMeteoPlace `json:"results"`
}

type openMeteoPlace struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (c *OpenMeteoClient) Name() string { return "openmeteo" }

func (c *OpenMeteoClient) Current(ctx context.Context, city string) (*Report, error) {
	place, err := c.resolveCity(ctx, city)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.4f", place.Latitude))
	query.Set("longitude", fmt.Sprintf("%.4f", place.Longitude))
	query.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	query.Set("daily", "sunrise,sunset")
	query.Set("timezone", "auto")
	query.Set("timeformat", "unixtime")
	query.Set("forecast_days", "1")

	var payload openMeteoResponse
	if err := c.getJSON(ctx, c.forecastURL, query, &payload); err != nil {
		return nil, err
	}

	var missing []string
	if payload.Current == nil {
		missing = append(missing, "current")
	} else {
		if payload.Current.Temperature == nil {
			missing = append(missing, "current.temperature_2m")
		}
		if payload.Current.RelativeHumidity == nil {
			missing = append(missing, "current.relative_humidity_2m")
		}
		if payload.Current.WindSpeed == nil {
			missing = append(missing, "current.wind_speed_10m")
		}
		if payload.Current.WeatherCode == nil {
			missing = append(missing, "current.weather_code")
		}
	}
	if len(payload.Daily.Sunrise) == 0 {
		missing = append(missing, "daily.sunrise")
	}
	if len(payload.Daily.Sunset) == 0 {
		missing = append(missing, "daily.sunset")
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Provider: c.Name(), Missing: missing}
	}

	condition, description := openMeteoDescribe(*payload.Current.WeatherCode)

	return &Report{
		Provider:       c.Name(),
		City:           place.Name,
		Country:        place.CountryCode,
		Time:           payload.Current.Time,
		Sunrise:        payload.Daily.Sunrise[0],
		Sunset:         payload.Daily.Sunset[0],
		TimezoneOffset: payload.UTCOffsetSeconds,
		Temperature:    *payload.Current.Temperature,
		Humidity:       int(*payload.Current.RelativeHumidity + 0.5),
		WindSpeed:      *payload.Current.WindSpeed,
		Condition:      condition,
		Description:    description,
	}, nil
}

func (c *OpenMeteoClient) resolveCity(ctx context.Context, city string) (openMeteoPlace, error) {
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")
	query.Set("language", "en")
	query.Set("format", "json")

	var payload openMeteoGeoResponse
	if err := c.getJSON(ctx, c.geocodingURL, query, &payload); err != nil {
		return openMeteoPlace{}, err
	}
	if len(payload.Results) == 0 {
		// Open-Meteo answers unknown names with 200 and no results.
		return openMeteoPlace{}, &StatusError{Provider: c.Name(), StatusCode: http.StatusNotFound, Body: "geocoding found no results"}
	}
	return payload.Results[0], nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("open-meteo request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("open-meteo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Provider: c.Name(), StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("open-meteo decode: %w", err)
	}
	return nil
}

// openMeteoDescribe maps WMO weather codes onto OpenWeather condition groups.
func openMeteoDescribe(code int) (string, string) {
	switch code {
	case 0:
		return "Clear", "clear sky"
	case 1:
		return "Clouds", "mainly clear"
	case 2:
		return "Clouds", "partly cloudy"
	case 3:
		return "Clouds", "overcast"
	case 45, 48:
		return "Fog", "fog"
	case 51, 53, 55, 56, 57:
		return "Drizzle", "drizzle"
	case 61, 63, 65, 66, 67:
		return "Rain", "rain"
	case 71, 73, 75, 77:
		return "Snow", "snow"
	case 80, 81, 82:
		return "Rain", "rain showers"
	case 85, 86:
		return "Snow", "snow showers"
	case 95:
		return "Thunderstorm", "thunderstorm"
	case 96, 99:
		return "Thunderstorm", "thunderstorm with hail"
	default:
		return "Unknown", "unknown conditions"
	}
}
