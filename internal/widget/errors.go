package widget

import (
	"encoding/json"
	"errors"
	"net/http"

	"weathercard/internal/weather"
)

const (
	MessageEmptyCity    = "Please enter a city name"
	MessageCityNotFound = "City not found"
	MessageMalformed    = "Unexpected weather data"
)

// ValidationError is reported before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrorKind classifies why a lookup failed. It exists for diagnostics; the
// user-facing message stays "City not found" for every transport failure.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindRateLimited  ErrorKind = "rate_limited"
	KindUnavailable  ErrorKind = "unavailable"
	KindNetwork      ErrorKind = "network"
	KindMalformed    ErrorKind = "malformed"
)

// LookupError is any failure after the request was attempted.
type LookupError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.Kind == KindMalformed {
		return MessageMalformed
	}
	return MessageCityNotFound
}

func (e *LookupError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Error()
	}
	if err != nil {
		return MessageCityNotFound
	}
	return ""
}

func classify(err error) *LookupError {
	var statusErr *weather.StatusError
	if errors.As(err, &statusErr) {
		kind := KindUnavailable
		switch statusErr.StatusCode {
		case http.StatusNotFound, http.StatusBadRequest:
			kind = KindNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindUnauthorized
		case http.StatusTooManyRequests:
			kind = KindRateLimited
		}
		return &LookupError{Kind: kind, StatusCode: statusErr.StatusCode, Err: err}
	}

	if errors.Is(err, weather.ErrMissingAPIKey) {
		return &LookupError{Kind: KindUnauthorized, Err: err}
	}

	var schemaErr *weather.SchemaError
	if errors.As(err, &schemaErr) {
		return &LookupError{Kind: KindMalformed, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &LookupError{Kind: KindMalformed, Err: err}
	}

	// Anything else (dial failures, timeouts, cancellation) never reached a response.
	return &LookupError{Kind: KindNetwork, Err: err}
}
