package duration

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration :
// A wrapper around the standard library duration to provide
// custom `JSON` marshalling so that it can be expressed with
// human readable strings (such as "1m30s") rather than only
// nanoseconds. This element extends the behavior provided by
// the `time.Duration` object.
type Duration struct {
	time.Duration
}

// ErrInvalidInput :
// Indicates that the value provided as input cannot be
// unmarshalled into a valid duration.
var ErrInvalidInput = fmt.Errorf("could not unmarshal value to duration")

// NewDuration :
// Creates a new duration from a base time.Duration.
//
// The `t` defines the wrapped duration.
//
// Returns the created duration.
func NewDuration(t time.Duration) Duration {
	return Duration{
		t,
	}
}

// MarshalJSON :
// Implementation of the marshaller interface to be able to use
// this object out-of-the-box with the `encoding/json` package
// provided by the standard library.
//
// Returns the marshalled bytes corresponding to this object
// along with any errors.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON :
// Second facet of the marshaller interface which allows to
// extract the duration from raw bytes. Both a float (amount
// of nanoseconds) and a string (parsed with the standard
// duration syntax) are accepted.
//
// The `b` defines the bytes to unmarshal.
//
// Returns any error.
func (d *Duration) UnmarshalJSON(b []byte) error {
	// Unmarshal the content using the base encoder. We will
	// then detect which actual datatype is provided.
	var value interface{}
	if err := json.Unmarshal(b, &value); err != nil {
		return err
	}

	switch typed := value.(type) {
	case float64:
		d.Duration = time.Duration(typed)
	case string:
		parsed, err := time.ParseDuration(typed)
		if err != nil {
			return ErrInvalidInput
		}
		d.Duration = parsed
	default:
		return ErrInvalidInput
	}

	return nil
}
