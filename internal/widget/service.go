package widget

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"weathercard/internal/weather"
)

// Service runs city lookups and writes the results into a Display.
//
// Lookups may overlap. Each one takes a sequence number when it starts and its
// outcome reaches the display only if no later-started lookup has been applied
// already, so the most recent search always wins regardless of response order.
type Service struct {
	providerMu sync.RWMutex
	provider   weather.Provider

	display Display
	dates   DateFormatter
	logger  *slog.Logger

	seq     atomic.Uint64
	mu      sync.Mutex
	applied uint64
}

type ServiceConfig struct {
	Provider weather.Provider
	Display  Display
	Dates    DateFormatter
	Logger   *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	display := cfg.Display
	if display == nil {
		display = discardDisplay{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: cfg.Provider,
		display:  display,
		dates:    cfg.Dates,
		logger:   logger.With("component", "widget.service"),
	}
}

// Lookup validates the raw input, fetches current conditions once and renders
// them. Stale results are returned with Fields.Stale set but not displayed.
func (s *Service) Lookup(ctx context.Context, rawCity string) (Fields, error) {
	city := strings.TrimSpace(rawCity)
	if city == "" {
		err := &ValidationError{Message: MessageEmptyCity}
		s.mu.Lock()
		s.display.Alert(err.Message)
		s.mu.Unlock()
		return Fields{}, err
	}

	provider := s.Provider()
	seq := s.seq.Add(1)
	s.logger.Debug("weather lookup started", "city", city, "seq", seq, "provider", provider.Name())

	report, err := provider.Current(ctx, city)
	if err != nil {
		lookupErr := classify(err)
		s.logger.Warn("weather lookup failed",
			"seq", seq,
			"kind", lookupErr.Kind,
			"status", lookupErr.StatusCode,
			"error", err,
		)
		s.commit(seq, func(d Display) { d.Alert(lookupErr.Error()) })
		return Fields{}, lookupErr
	}

	fields := Present(report, s.dates)
	if !s.commit(seq, fields.Apply) {
		fields.Stale = true
		s.logger.Debug("weather lookup superseded", "seq", seq)
		return fields, nil
	}

	s.logger.Info("weather lookup rendered",
		"seq", seq,
		"condition", report.Condition,
		"theme", fields.Theme.Theme,
		"day", fields.IsDay,
	)
	return fields, nil
}

// commit runs render under the display lock unless a newer lookup already won.
func (s *Service) commit(seq uint64, render func(Display)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		return false
	}
	s.applied = seq
	render(s.display)
	return true
}

func (s *Service) Provider() weather.Provider {
	s.providerMu.RLock()
	defer s.providerMu.RUnlock()
	return s.provider
}

// SetProvider swaps the provider used by lookups started from now on.
func (s *Service) SetProvider(p weather.Provider) {
	s.providerMu.Lock()
	s.provider = p
	s.providerMu.Unlock()
}
