package widget

import "strings"

// Theme names the background treatment applied to the widget.
type Theme string

const (
	ThemeSummer Theme = "summer"
	ThemeRain   Theme = "rain"
	ThemeSnow   Theme = "snow"
	ThemeWinter Theme = "winter"
)

// Image references the condition artwork shown next to the temperature.
type Image string

const (
	ImageSummer Image = "assets/summer.png"
	ImageRain   Image = "assets/rain.png"
	ImageSnow   Image = "assets/snow.png"
	ImageWinter Image = "assets/winter.png"
)

// ThemeResult is the single active theme and image pair.
type ThemeResult struct {
	Theme Theme `json:"theme"`
	Image Image `json:"image"`
}

var dayThemes = map[string]ThemeResult{
	"clear": {Theme: ThemeSummer, Image: ImageSummer},
	"rain":  {Theme: ThemeRain, Image: ImageRain},
	"snow":  {Theme: ThemeSnow, Image: ImageSnow},
}

// SelectTheme picks the theme for a condition label. Unknown daytime labels
// fall back to summer; at night the theme is always winter and only rain
// changes the image.
func SelectTheme(condition string, isDay bool) ThemeResult {
	key := strings.ToLower(condition)

	if isDay {
		if result, ok := dayThemes[key]; ok {
			return result
		}
		return ThemeResult{Theme: ThemeSummer, Image: ImageSummer}
	}

	if key == "rain" {
		return ThemeResult{Theme: ThemeWinter, Image: ImageRain}
	}
	return ThemeResult{Theme: ThemeWinter, Image: ImageWinter}
}

// Themes lists every theme in display order.
func Themes() []Theme {
	return []Theme{ThemeSummer, ThemeRain, ThemeSnow, ThemeWinter}
}

// ParseTheme resolves a theme name case-insensitively.
func ParseTheme(name string) (Theme, bool) {
	for _, t := range Themes() {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, true
		}
	}
	return "", false
}
