package widget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weathercard/internal/weather"
)

func TestServiceLookupLondon(t *testing.T) {
	provider := &stubProvider{report: londonReport()}
	display := &recordingDisplay{}
	svc := newTestService(provider, display)

	fields, err := svc.Lookup(context.Background(), "  London ")
	require.NoError(t, err)
	require.Equal(t, []string{"London"}, provider.cities())

	require.Equal(t, "London, GB", fields.City)
	require.Equal(t, "16°C", fields.Temperature)
	require.Equal(t, "clear sky", fields.Condition)
	require.Equal(t, "💨 3.2 km/h", fields.Wind)
	require.Equal(t, "💧 70%", fields.Humidity)
	require.Equal(t, "Clear 16°", fields.Today)
	require.Equal(t, "Thursday, 1 Jan", fields.Date)
	require.True(t, fields.IsDay)
	require.Equal(t, ThemeResult{Theme: ThemeSummer, Image: ImageSummer}, fields.Theme)
	require.False(t, fields.Stale)

	require.Equal(t, fields.City, display.values["city"])
	require.Equal(t, fields.Date, display.values["date"])
	require.Equal(t, fields.Temperature, display.values["temperature"])
	require.Equal(t, fields.Condition, display.values["condition"])
	require.Equal(t, fields.Wind, display.values["wind"])
	require.Equal(t, fields.Humidity, display.values["humidity"])
	require.Equal(t, fields.Today, display.values["today"])
	require.Equal(t, fields.Theme, display.theme)
	require.Equal(t, 1, display.themeCalls)
	require.Empty(t, display.alerts)
}

func TestServiceLookupNightRain(t *testing.T) {
	report := londonReport()
	report.Time = 2000
	report.Condition = "Rain"
	report.Description = "light rain"
	svc := newTestService(&stubProvider{report: report}, &recordingDisplay{})

	fields, err := svc.Lookup(context.Background(), "London")
	require.NoError(t, err)
	require.False(t, fields.IsDay)
	require.Equal(t, ThemeResult{Theme: ThemeWinter, Image: ImageRain}, fields.Theme)
	require.Equal(t, "Rain 16°", fields.Today)
}

func TestServiceLookupEmptyCity(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		provider := &stubProvider{report: londonReport()}
		display := &recordingDisplay{}
		svc := newTestService(provider, display)

		_, err := svc.Lookup(context.Background(), input)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, MessageEmptyCity, err.Error())
		require.Empty(t, provider.cities(), "no network call for %q", input)
		require.Equal(t, []string{MessageEmptyCity}, display.alerts)
	}
}

func TestServiceLookupStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindNotFound},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindUnavailable},
		{http.StatusServiceUnavailable, KindUnavailable},
		{http.StatusMultipleChoices, KindUnavailable},
	}

	for _, tc := range tests {
		display := &recordingDisplay{}
		provider := &stubProvider{err: &weather.StatusError{Provider: "stub", StatusCode: tc.status}}
		svc := newTestService(provider, display)

		_, err := svc.Lookup(context.Background(), "Atlantis")

		var lookupErr *LookupError
		require.ErrorAs(t, err, &lookupErr)
		require.Equal(t, MessageCityNotFound, err.Error())
		require.Equal(t, tc.kind, lookupErr.Kind, "status %d", tc.status)
		require.Equal(t, tc.status, lookupErr.StatusCode)
		require.Equal(t, []string{MessageCityNotFound}, display.alerts)
		require.Empty(t, display.values)
	}
}

func TestServiceLookupNetworkAndSchemaErrors(t *testing.T) {
	svc := newTestService(&stubProvider{err: errors.New("dial tcp: connection refused")}, &recordingDisplay{})
	_, err := svc.Lookup(context.Background(), "London")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, KindNetwork, lookupErr.Kind)
	require.Equal(t, MessageCityNotFound, UserMessage(err))

	svc = newTestService(&stubProvider{err: &weather.SchemaError{Provider: "stub", Missing: []string{"sys.country"}}}, &recordingDisplay{})
	_, err = svc.Lookup(context.Background(), "London")
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, KindMalformed, lookupErr.Kind)
	require.Equal(t, MessageMalformed, UserMessage(err))

	svc = newTestService(&stubProvider{err: weather.ErrMissingAPIKey}, &recordingDisplay{})
	_, err = svc.Lookup(context.Background(), "London")
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, KindUnauthorized, lookupErr.Kind)
	require.ErrorIs(t, err, weather.ErrMissingAPIKey)
}

func TestServiceLookupDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	provider := &stubProvider{
		fn: func(ctx context.Context, city string) (*weather.Report, error) {
			started <- city
			report := londonReport()
			report.City = city
			if city == "London" {
				<-release
			}
			return report, nil
		},
	}
	display := &recordingDisplay{}
	svc := newTestService(provider, display)

	var (
		wg        sync.WaitGroup
		slow      Fields
		slowError error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow, slowError = svc.Lookup(context.Background(), "London")
	}()
	require.Equal(t, "London", waitFor(t, started))

	fast, err := svc.Lookup(context.Background(), "Paris")
	require.Equal(t, "Paris", waitFor(t, started))
	require.NoError(t, err)
	require.False(t, fast.Stale)

	close(release)
	wg.Wait()

	require.NoError(t, slowError)
	require.True(t, slow.Stale)
	require.Equal(t, "Paris, GB", display.get("city"))
	require.Equal(t, 1, display.themeCalls)
}

func TestServiceLookupStaleFailureNotAlerted(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	provider := &stubProvider{
		fn: func(ctx context.Context, city string) (*weather.Report, error) {
			started <- city
			if city == "Nowhere" {
				<-release
				return nil, &weather.StatusError{Provider: "stub", StatusCode: http.StatusNotFound}
			}
			return londonReport(), nil
		},
	}
	display := &recordingDisplay{}
	svc := newTestService(provider, display)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Lookup(context.Background(), "Nowhere")
		done <- err
	}()
	require.Equal(t, "Nowhere", waitFor(t, started))

	_, err := svc.Lookup(context.Background(), "London")
	require.NoError(t, err)
	waitFor(t, started)

	close(release)
	require.Error(t, <-done)
	require.Empty(t, display.alerts)
	require.Equal(t, "London, GB", display.get("city"))
}

func newTestService(provider weather.Provider, display Display) *Service {
	return NewService(ServiceConfig{
		Provider: provider,
		Display:  display,
		Dates:    NewDateFormatter(time.UTC),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func londonReport() *weather.Report {
	return &weather.Report{
		Provider:    "stub",
		City:        "London",
		Country:     "GB",
		Time:        1500,
		Sunrise:     1000,
		Sunset:      2000,
		Temperature: 15.6,
		Humidity:    70,
		WindSpeed:   3.2,
		Condition:   "Clear",
		Description: "clear sky",
	}
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for provider call")
		return ""
	}
}

type stubProvider struct {
	report *weather.Report
	err    error
	fn     func(ctx context.Context, city string) (*weather.Report, error)

	mu    sync.Mutex
	calls []string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Current(ctx context.Context, city string) (*weather.Report, error) {
	s.mu.Lock()
	s.calls = append(s.calls, city)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(ctx, city)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubProvider) cities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// recordingDisplay is only written under the service's display lock.
type recordingDisplay struct {
	mu         sync.Mutex
	values     map[string]string
	theme      ThemeResult
	themeCalls int
	alerts     []string
}

func (d *recordingDisplay) set(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.values == nil {
		d.values = map[string]string{}
	}
	d.values[key] = value
}

func (d *recordingDisplay) get(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[key]
}

func (d *recordingDisplay) SetCity(text string)        { d.set("city", text) }
func (d *recordingDisplay) SetDate(text string)        { d.set("date", text) }
func (d *recordingDisplay) SetTemperature(text string) { d.set("temperature", text) }
func (d *recordingDisplay) SetCondition(text string)   { d.set("condition", text) }
func (d *recordingDisplay) SetWind(text string)        { d.set("wind", text) }
func (d *recordingDisplay) SetHumidity(text string)    { d.set("humidity", text) }
func (d *recordingDisplay) SetToday(text string)       { d.set("today", text) }

func (d *recordingDisplay) SetTheme(theme ThemeResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.theme = theme
	d.themeCalls++
}

func (d *recordingDisplay) Alert(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, message)
}

func TestServiceSetProvider(t *testing.T) {
	first := &stubProvider{report: londonReport()}
	svc := newTestService(first, nil)

	paris := londonReport()
	paris.City = "Paris"
	paris.Country = "FR"
	second := &stubProvider{report: paris}
	svc.SetProvider(second)

	fields, err := svc.Lookup(context.Background(), "Paris")
	require.NoError(t, err)
	require.Equal(t, "Paris, FR", fields.City)
	require.Empty(t, first.cities())
	require.Equal(t, []string{"Paris"}, second.cities())
	require.Same(t, second, svc.Provider())
}
