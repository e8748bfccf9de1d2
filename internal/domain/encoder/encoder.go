// Package encoder maps opaque identities to dense integer codes for training.
package encoder

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Encoder is a bijection between raw identity strings and codes in
// [0, Len()). It is fit once per training cycle and immutable afterwards;
// codes are not stable across training runs because every bundle carries
// its own matching pair of encoders.
type Encoder struct {
	codes  map[string]int
	values []string
}

// New returns an empty, unfitted encoder.
func New() *Encoder {
	return &Encoder{codes: make(map[string]int)}
}

// Fit builds the code assignment from the distinct values observed.
// Values are sorted before enumeration so the mapping is reproducible for a
// given fit set regardless of input order.
func (e *Encoder) Fit(values []string) {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}

	e.values = make([]string, 0, len(distinct))
	for v := range distinct {
		e.values = append(e.values, v)
	}
	sort.Strings(e.values)

	e.codes = make(map[string]int, len(e.values))
	for i, v := range e.values {
		e.codes[v] = i
	}
}

// Transform returns the code for v. Identities absent from the fit set fail
// with ErrUnknownIdentity; callers own any fallback policy.
func (e *Encoder) Transform(v string) (int, error) {
	code, ok := e.codes[v]
	if !ok {
		return 0, fmt.Errorf("identity %q: %w", v, ErrUnknownIdentity)
	}
	return code, nil
}

// Inverse returns the raw identity for a code.
func (e *Encoder) Inverse(code int) (string, error) {
	if code < 0 || code >= len(e.values) {
		return "", fmt.Errorf("code %d: %w", code, ErrUnknownIdentity)
	}
	return e.values[code], nil
}

// Len returns the number of distinct identities in the fit set.
func (e *Encoder) Len() int {
	return len(e.values)
}

// MarshalJSON serializes the fitted value list; codes are implied by order.
func (e *Encoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.values)
}

// UnmarshalJSON restores an encoder from its serialized value list.
func (e *Encoder) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	e.values = values
	e.codes = make(map[string]int, len(values))
	for i, v := range values {
		e.codes[v] = i
	}
	return nil
}
