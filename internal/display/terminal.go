package display

import (
	"fmt"
	"io"

	"weathercard/internal/widget"
)

// Terminal prints each field as a labelled line.
type Terminal struct {
	w io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) line(label, text string) {
	fmt.Fprintf(t.w, "%-12s %s\n", label+":", text)
}

func (t *Terminal) SetCity(text string)        { t.line("City", text) }
func (t *Terminal) SetDate(text string)        { t.line("Date", text) }
func (t *Terminal) SetTemperature(text string) { t.line("Temperature", text) }
func (t *Terminal) SetCondition(text string)   { t.line("Condition", text) }
func (t *Terminal) SetWind(text string)        { t.line("Wind", text) }
func (t *Terminal) SetHumidity(text string)    { t.line("Humidity", text) }
func (t *Terminal) SetToday(text string)       { t.line("Today", text) }

func (t *Terminal) SetTheme(theme widget.ThemeResult) {
	t.line("Theme", fmt.Sprintf("%s (%s)", theme.Theme, theme.Image))
}

func (t *Terminal) Alert(message string) {
	fmt.Fprintf(t.w, "! %s\n", message)
}
