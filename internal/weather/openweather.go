package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org"

type OpenWeatherClient struct {
	apiKey  string
	baseURL *url.URL
	units   string
	client  *http.Client
}

func NewOpenWeatherClient(apiKey, baseURL, units string, timeout time.Duration) (*OpenWeatherClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenWeatherURL
	}
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("openweather base url: %w", err)
	}
	if units == "" {
		units = "metric"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: parsed,
		units:   units,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type openWeatherResponse struct {
	Name     *string `json:"name"`
	Dt       *int64  `json:"dt"`
	Timezone int     `json:"timezone"`
	Sys      struct {
		Country *string `json:"country"`
		Sunrise *int64  `json:"sunrise"`
		Sunset  *int64  `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        *string `json:"main"`
		Description *string `json:"description"`
	} `json:"weather"`
}

func (c *OpenWeatherClient) Name() string { return "openweather" }

func (c *OpenWeatherClient) Current(ctx context.Context, city string) (*Report, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", ErrMissingAPIKey)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/data/2.5/weather"
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openweather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{
			Provider:   c.Name(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openweather decode: %w", err)
	}

	return payload.report(c.Name())
}

func (p *openWeatherResponse) report(provider string) (*Report, error) {
	var missing []string
	if p.Name == nil {
		missing = append(missing, "name")
	}
	if p.Sys.Country == nil {
		missing = append(missing, "sys.country")
	}
	if p.Sys.Sunrise == nil {
		missing = append(missing, "sys.sunrise")
	}
	if p.Sys.Sunset == nil {
		missing = append(missing, "sys.sunset")
	}
	if p.Dt == nil {
		missing = append(missing, "dt")
	}
	if p.Main.Temp == nil {
		missing = append(missing, "main.temp")
	}
	if p.Main.Humidity == nil {
		missing = append(missing, "main.humidity")
	}
	if p.Wind.Speed == nil {
		missing = append(missing, "wind.speed")
	}
	if len(p.Weather) == 0 {
		missing = append(missing, "weather[0]")
	} else {
		if p.Weather[0].Main == nil {
			missing = append(missing, "weather[0].main")
		}
		if p.Weather[0].Description == nil {
			missing = append(missing, "weather[0].description")
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Provider: provider, Missing: missing}
	}

	return &Report{
		Provider:       provider,
		City:           *p.Name,
		Country:        *p.Sys.Country,
		Time:           *p.Dt,
		Sunrise:        *p.Sys.Sunrise,
		Sunset:         *p.Sys.Sunset,
		TimezoneOffset: p.Timezone,
		Temperature:    *p.Main.Temp,
		Humidity:       *p.Main.Humidity,
		WindSpeed:      *p.Wind.Speed,
		Condition:      *p.Weather[0].Main,
		Description:    *p.Weather[0].Description,
	}, nil
}
