package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTTL = errors.New("invalid duration")

var ttlUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseTTL converts a token lifetime such as "15m", "12h" or "7d" into a
// duration. A bare integer is read as seconds. The amount must be a positive
// integer; any other input is rejected.
func ParseTTL(descriptor string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(descriptor))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTTL)
	}

	unit := time.Second
	digits := s
	if last := s[len(s)-1]; last < '0' || last > '9' {
		u, ok := ttlUnits[last]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit in %q", ErrInvalidTTL, descriptor)
		}
		unit = u
		digits = s[:len(s)-1]
	}

	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, descriptor)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, descriptor)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTTL, descriptor)
	}
	if n > int64(math.MaxInt64/unit) {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidTTL, descriptor)
	}

	return time.Duration(n) * unit, nil
}
