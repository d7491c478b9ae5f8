package weather

import "errors"

var (
	// ErrMalformedResponse is returned when the provider payload does not have
	// the expected forecast structure.
	ErrMalformedResponse = errors.New("malformed forecast response")

	// ErrEmptyForecast is returned when the provider reports no forecast entries,
	// so no average can be computed.
	ErrEmptyForecast = errors.New("forecast contains no entries")
)

// ErrorKind classifies failures for the HTTP boundary.
type ErrorKind int

const (
	// KindOther covers everything that is not classified below.
	KindOther ErrorKind = iota
	// KindNotFound means the provider answered without a body for the city.
	KindNotFound
	// KindExternalFailure means the outbound provider call failed.
	KindExternalFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindExternalFailure:
		return "external_failure"
	default:
		return "other"
	}
}

// Error is a classified failure for a single city lookup.
type Error struct {
	Kind ErrorKind
	City string
	Err  error
}

// NotFound returns the error reported when the provider has nothing for city.
func NotFound(city string) *Error {
	return &Error{Kind: KindNotFound, City: city}
}

// ExternalFailure wraps a provider call failure for city.
func ExternalFailure(city string, cause error) *Error {
	return &Error{Kind: KindExternalFailure, City: city, Err: cause}
}

// AggregationFailure wraps a payload that could not be summarized for city,
// such as ErrMalformedResponse or ErrEmptyForecast.
func AggregationFailure(city string, cause error) *Error {
	return &Error{Kind: KindOther, City: city, Err: cause}
}

// Error returns the client-facing message. The cause is deliberately left out;
// it is reachable through Unwrap for logging.
func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return "City not found: " + e.City
	case KindExternalFailure:
		return "Error fetching data for city: " + e.City
	default:
		return "Error processing forecast for city: " + e.City
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Errors that are not an *Error are KindOther.
func KindOf(err error) ErrorKind {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return KindOther
}
