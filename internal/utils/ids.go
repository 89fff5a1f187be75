// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ParseID parses a positive decimal ID such as a path parameter.
// Empty, signed, zero, non-numeric and overflowing inputs return (0, false).
//
//	id, ok := utils.ParseID(c.Param("id"))
func ParseID(s string) (uint, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// ErrInvalidID is returned when a FlexID cannot be decoded.
var ErrInvalidID = errors.New("id must be a positive integer")

// FlexID is a JSON ID that accepts either a number (7) or a numeric string
// ("7"). null, "" and a missing field decode to zero, which callers treat as
// absent.
type FlexID uint

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidID
		}
		if strings.TrimSpace(s) == "" {
			*f = 0
			return nil
		}
		id, ok := ParseID(s)
		if !ok {
			return ErrInvalidID
		}
		*f = FlexID(id)
		return nil
	}
	id, ok := ParseID(string(b))
	if !ok {
		return ErrInvalidID
	}
	*f = FlexID(id)
	return nil
}

// Uint returns the ID as a uint.
func (f FlexID) Uint() uint { return uint(f) }
