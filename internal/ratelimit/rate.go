package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a request quota per fixed window.
type Rate struct {
	Limit  int
	Window time.Duration
}

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRate parses limit strings such as "5 per minute", "100 per 2 hours",
// "10/second" and "5 per 1 minute".
func ParseRate(spec string) (Rate, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	var countPart, windowPart string
	if before, after, ok := strings.Cut(s, "/"); ok {
		countPart, windowPart = before, after
	} else if before, after, ok := strings.Cut(s, " per "); ok {
		countPart, windowPart = before, after
	} else {
		return Rate{}, fmt.Errorf("invalid rate limit %q: want \"<n> per <unit>\"", spec)
	}

	limit, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("invalid rate limit %q: count must be a positive integer", spec)
	}

	fields := strings.Fields(windowPart)
	multiplier := 1
	switch len(fields) {
	case 1:
	case 2:
		multiplier, err = strconv.Atoi(fields[0])
		if err != nil || multiplier <= 0 {
			return Rate{}, fmt.Errorf("invalid rate limit %q: window multiplier must be a positive integer", spec)
		}
		fields = fields[1:]
	default:
		return Rate{}, fmt.Errorf("invalid rate limit %q: want \"<n> per <unit>\"", spec)
	}

	unit, ok := units[strings.TrimSuffix(fields[0], "s")]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate limit %q: unknown unit %q", spec, fields[0])
	}
	return Rate{Limit: limit, Window: time.Duration(multiplier) * unit}, nil
}

// String renders the rate as "<n> per <m> <unit>".
func (r Rate) String() string {
	for _, name := range []string{"day", "hour", "minute", "second"} {
		unit := units[name]
		if r.Window >= unit && r.Window%unit == 0 {
			return fmt.Sprintf("%d per %d %s", r.Limit, r.Window/unit, name)
		}
	}
	return fmt.Sprintf("%d per %s", r.Limit, r.Window)
}
