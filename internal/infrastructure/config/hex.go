package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Hex is an unsigned value that decodes from a JSON number or from a string
// in decimal or 0x-prefixed hexadecimal
type Hex uint64

// UnmarshalJSON implements json.Unmarshaler
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("hex value %s: %w", data, err)
		}
		*h = Hex(n)
		return nil
	}

	v, err := ParseUint(s)
	if err != nil {
		return err
	}
	*h = Hex(v)
	return nil
}

// MarshalJSON implements json.Marshaler
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%#x", uint64(h)))
}

// ParseUint parses decimal or 0x-prefixed hexadecimal
func ParseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseUint(rest, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex value %q: %w", s, err)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

// Uint64s converts a list of Hex values
func Uint64s(hs []Hex) []uint64 {
	out := make([]uint64, len(hs))
	for i, h := range hs {
		out[i] = uint64(h)
	}
	return out
}
