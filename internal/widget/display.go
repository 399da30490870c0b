package widget

// Display is the presentation surface a lookup writes into.
type Display interface {
	SetCity(text string)
	SetDate(text string)
	SetTemperature(text string)
	SetCondition(text string)
	SetWind(text string)
	SetHumidity(text string)
	SetToday(text string)
	SetTheme(theme ThemeResult)
	Alert(message string)
}

// Fields holds every rendered value of one successful lookup.
type Fields struct {
	City        string      `json:"city"`
	Date        string      `json:"date"`
	Temperature string      `json:"temperature"`
	Condition   string      `json:"condition"`
	Wind        string      `json:"wind"`
	Humidity    string      `json:"humidity"`
	Today       string      `json:"today"`
	Theme       ThemeResult `json:"theme"`
	IsDay       bool        `json:"is_day"`
	Stale       bool        `json:"stale,omitempty"`
}

// Apply writes the fields through the setters in a fixed order, theme last.
func (f Fields) Apply(d Display) {
	d.SetCity(f.City)
	d.SetDate(f.Date)
	d.SetTemperature(f.Temperature)
	d.SetCondition(f.Condition)
	d.SetWind(f.Wind)
	d.SetHumidity(f.Humidity)
	d.SetToday(f.Today)
	d.SetTheme(f.Theme)
}

type discardDisplay struct{}

func (discardDisplay) SetCity(string)        {}
func (discardDisplay) SetDate(string)        {}
func (discardDisplay) SetTemperature(string) {}
func (discardDisplay) SetCondition(string)   {}
func (discardDisplay) SetWind(string)        {}
func (discardDisplay) SetHumidity(string)    {}
func (discardDisplay) SetToday(string)       {}
func (discardDisplay) SetTheme(ThemeResult)  {}
func (discardDisplay) Alert(string)          {}
