package query

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultMaxRate     = 5.0
	DefaultMaxLockDays = 31
)

// Params are the thresholds of one query.
type Params struct {
	MaxRate     float64
	MaxLockDays int
}

func DefaultParams() Params {
	return Params{MaxRate: DefaultMaxRate, MaxLockDays: DefaultMaxLockDays}
}

// ParseParams reads (rate, days) from exactly two arguments. Any other count
// gives the defaults; each unusable value falls back to its own default.
func ParseParams(args []string) Params {
	p := DefaultParams()
	if len(args) != 2 {
		return p
	}

	if rate, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64); err == nil &&
		rate != 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0) {
		p.MaxRate = rate
	}

	if days, ok := parseDigits(args[1]); ok {
		p.MaxLockDays = days
	}
	return p
}

// ParseCommand splits a command message like "/lp 3.5 20" on single spaces.
// Only a message with exactly two arguments overrides the defaults.
func ParseCommand(text string) Params {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(text)), " ")
	if len(parts) != 3 {
		return DefaultParams()
	}
	return ParseParams(parts[1:])
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
