package widget

import (
	"fmt"
	"math"
	"strconv"

	"weathercard/internal/weather"
)

// Present maps a report onto display text.
func Present(report *weather.Report, dates DateFormatter) Fields {
	isDay := IsDaytime(report.Time, report.Sunrise, report.Sunset)
	temp := roundHalfUp(report.Temperature)

	return Fields{
		City:        fmt.Sprintf("%s, %s", report.City, report.Country),
		Date:        dates.formatReport(report),
		Temperature: fmt.Sprintf("%d°C", temp),
		Condition:   report.Description,
		Wind:        fmt.Sprintf("💨 %s km/h", formatNumber(report.WindSpeed)),
		Humidity:    fmt.Sprintf("💧 %d%%", report.Humidity),
		Today:       fmt.Sprintf("%s %d°", report.Condition, temp),
		Theme:       SelectTheme(report.Condition, isDay),
		IsDay:       isDay,
	}
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2.
// v+0.5 is never formed; it can round up for values just below one half.
func roundHalfUp(v float64) int {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return int(f)
}

// formatNumber prints the shortest decimal form: 3.2 -> "3.2", 3 -> "3".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
