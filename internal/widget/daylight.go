package widget

// IsDaytime reports whether current lies in [sunrise, sunset). Inputs are not
// checked for consistency: when sunset <= sunrise the result is always false.
func IsDaytime(current, sunrise, sunset int64) bool {
	return current >= sunrise && current < sunset
}
