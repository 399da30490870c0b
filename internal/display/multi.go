package display

import "weathercard/internal/widget"

// Multi fans every call out to several displays in order.
type Multi []widget.Display

func (m Multi) SetCity(text string) {
	for _, d := range m {
		d.SetCity(text)
	}
}

func (m Multi) SetDate(text string) {
	for _, d := range m {
		d.SetDate(text)
	}
}

func (m Multi) SetTemperature(text string) {
	for _, d := range m {
		d.SetTemperature(text)
	}
}

func (m Multi) SetCondition(text string) {
	for _, d := range m {
		d.SetCondition(text)
	}
}

func (m Multi) SetWind(text string) {
	for _, d := range m {
		d.SetWind(text)
	}
}

func (m Multi) SetHumidity(text string) {
	for _, d := range m {
		d.SetHumidity(text)
	}
}

func (m Multi) SetToday(text string) {
	for _, d := range m {
		d.SetToday(text)
	}
}

func (m Multi) SetTheme(theme widget.ThemeResult) {
	for _, d := range m {
		d.SetTheme(theme)
	}
}

func (m Multi) Alert(message string) {
	for _, d := range m {
		d.Alert(message)
	}
}
