package widget

import (
	"fmt"
	"strings"
	"time"

	"weathercard/internal/weather"
)

// dateLayout renders "Thursday, 9 Jan": long weekday, unpadded day, short month.
const dateLayout = "Monday, 2 Jan"

// DateFormatter turns provider timestamps into display dates.
type DateFormatter struct {
	loc      *time.Location
	cityTime bool
}

// NewDateFormatter formats in loc; a nil loc means the process local zone.
func NewDateFormatter(loc *time.Location) DateFormatter {
	return DateFormatter{loc: loc}
}

// ParseDateZone builds a formatter from a config value: "local", "city"
// (the looked-up city's own UTC offset) or an IANA zone name.
func ParseDateZone(name string) (DateFormatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return NewDateFormatter(time.Local), nil
	case "city":
		return DateFormatter{cityTime: true}, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return DateFormatter{}, fmt.Errorf("date timezone %q: %w", name, err)
	}
	return NewDateFormatter(loc), nil
}

// Format accepts any unix timestamp in seconds; nothing is range checked.
func (f DateFormatter) Format(timestamp int64) string {
	loc := f.loc
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(timestamp, 0).In(loc).Format(dateLayout)
}

func (f DateFormatter) formatReport(report *weather.Report) string {
	if f.cityTime {
		return time.Unix(report.Time, 0).In(report.Location()).Format(dateLayout)
	}
	return f.Format(report.Time)
}
