package display

import (
	"sync"
	"time"

	"weathercard/internal/widget"
)

// State is a snapshot of everything currently shown.
type State struct {
	Fields    widget.Fields `json:"fields"`
	Alert     string        `json:"alert,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Recorder keeps the current display state in memory. Field setters fill a
// pending record; readers only see it once SetTheme, the last setter of a
// render, publishes it whole.
type Recorder struct {
	mu      sync.RWMutex
	state   State
	pending widget.Fields
	now     func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Recorder) stage(fn func(f *widget.Fields)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.pending)
}

func (r *Recorder) SetCity(text string) {
	r.stage(func(f *widget.Fields) { f.City = text })
}

func (r *Recorder) SetDate(text string) {
	r.stage(func(f *widget.Fields) { f.Date = text })
}

func (r *Recorder) SetTemperature(text string) {
	r.stage(func(f *widget.Fields) { f.Temperature = text })
}

func (r *Recorder) SetCondition(text string) {
	r.stage(func(f *widget.Fields) { f.Condition = text })
}

func (r *Recorder) SetWind(text string) {
	r.stage(func(f *widget.Fields) { f.Wind = text })
}

func (r *Recorder) SetHumidity(text string) {
	r.stage(func(f *widget.Fields) { f.Humidity = text })
}

func (r *Recorder) SetToday(text string) {
	r.stage(func(f *widget.Fields) { f.Today = text })
}

// SetTheme completes the pending record and replaces the visible one, theme
// included; exactly one theme is active.
func (r *Recorder) SetTheme(theme widget.ThemeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending.Theme = theme
	r.pending.IsDay = theme.Theme != widget.ThemeWinter
	r.state = State{Fields: r.pending, UpdatedAt: r.now()}
	r.pending = widget.Fields{}
}

// Alert keeps the previously rendered fields, like a blocking dialog over the card.
func (r *Recorder) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Alert = message
	r.state.UpdatedAt = r.now()
}
