package humastar

import (
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/spf13/cast"
)

// Signals is the flat JSON object of Datastar signals sent with a request.
type Signals map[string]any

// ParseSignals parses Datastar signals from a raw request body.
func ParseSignals(body []byte) (Signals, error) {
	var signals Signals
	if err := json.Unmarshal(body, &signals); err != nil {
		return nil, err
	}
	if signals == nil {
		signals = Signals{}
	}
	return signals, nil
}

// String returns a string signal, or "" if missing.
func (s Signals) String(key string) string {
	return cast.ToString(s[key])
}

// Int returns an int signal. Strings such as "12" are accepted since bound
// inputs send text.
func (s Signals) Int(key string) (int, error) {
	v, ok := s[key]
	if !ok || v == nil || v == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("signal %q: %w", key, err)
	}
	return n, nil
}

// Float returns a float64 signal. A missing signal is an error.
func (s Signals) Float(key string) (float64, error) {
	v, ok := s[key]
	if !ok || v == nil || v == "" {
		return 0, fmt.Errorf("signal %q is required", key)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("signal %q: %w", key, err)
	}
	return f, nil
}

// Has reports whether the signal is present.
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// EmptyInput is an input struct for handlers with no parameters.
type EmptyInput struct{}

// SignalsInput captures the raw request body before streaming starts.
type SignalsInput struct {
	RawBody []byte
}

// MustParse parses signals or returns a Huma 400 error.
func (i *SignalsInput) MustParse() (Signals, error) {
	signals, err := ParseSignals(i.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}
	return signals, nil
}
