package objects

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Claims is the caller's identity attribute bag. Values are either a single
// string or a list of strings (multi-valued claims such as roles), but the
// map keeps them untyped so policy scripts can bind them directly.
type Claims map[string]any

// Strings returns the claim values for key as a string slice. A single-valued
// claim yields a one-element slice.
func (c Claims) Strings(key string) []string {
	value, ok := c[key]
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	default:
		values, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil
		}

		return values
	}
}

// String returns the first value for key, or the empty string.
func (c Claims) String(key string) string {
	values := c.Strings(key)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

// HasValue reports whether key carries the given value, case-insensitive.
func (c Claims) HasValue(key, value string) bool {
	for _, v := range c.Strings(key) {
		if strings.EqualFold(v, value) {
			return true
		}
	}

	return false
}

// ParseClaims decodes claims that were serialized as JSON, for example inside
// a queued job payload. Nested JSON values are flattened to plain Go values
// and null members are dropped.
func ParseClaims(data string) (Claims, error) {
	if data == "" {
		return Claims{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}

	claims := make(Claims, len(raw))

	for key, value := range raw {
		if value == nil {
			continue
		}

		claims[key] = normalizeClaimValue(value)
	}

	return claims, nil
}

func normalizeClaimValue(value any) any {
	switch v := value.(type) {
	case []any:
		values := make([]any, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}

			values = append(values, normalizeClaimValue(item))
		}

		return values
	case map[string]any:
		values := make(map[string]any, len(v))
		for key, item := range v {
			if item == nil {
				continue
			}

			values[key] = normalizeClaimValue(item)
		}

		return values
	default:
		return v
	}
}
