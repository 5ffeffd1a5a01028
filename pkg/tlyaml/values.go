package tlyaml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%w: %d", ErrFieldRange, n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("%w: %d", ErrFieldRange, n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case float64:
		if n < 0 || n != math.Trunc(n) || n > math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v", ErrFieldRange, n)
		}
		return uint64(n), nil
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(n), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrFieldRange, n)
		}
		return u, nil
	default:
		return 0, fmt.Errorf("%w: unsupported value %v (%T)", ErrFieldRange, v, v)
	}
}

// fieldValue reads key from rec and checks it fits in bits.
func fieldValue(rec map[string]any, key string, bits int) (uint64, error) {
	raw, ok := rec[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	v, err := toUint64(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if bits < 64 && v >= 1<<bits {
		return 0, fmt.Errorf("%w: %s=%#x exceeds %d bits", ErrFieldRange, key, v, bits)
	}
	return v, nil
}

func stringValue(rec map[string]any, key string) (string, error) {
	raw, ok := rec[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidEntry, key)
	}
	return s, nil
}
