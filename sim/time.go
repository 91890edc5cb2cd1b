package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VTime is a point or a span of simulated time, counted in picoseconds.
type VTime uint64

// Units of simulated time.
const (
	Ps  VTime = 1
	Ns        = 1000 * Ps
	Us        = 1000 * Ns
	Ms        = 1000 * Us
	Sec       = 1000 * Ms
)

var timeUnits = []struct {
	suffix string
	unit   VTime
}{
	{"ps", Ps},
	{"ns", Ns},
	{"us", Us},
	{"ms", Ms},
	{"s", Sec},
}

// FromMs converts a value given in milliseconds to VTime. Fractions below one
// picosecond are rounded to the nearest picosecond.
func FromMs(ms float64) VTime {
	return VTime(math.Round(ms * float64(Ms)))
}

// Ms returns the time in milliseconds.
func (t VTime) Ms() float64 {
	return float64(t) / float64(Ms)
}

// String formats the time with the largest unit that keeps the value at or
// above one.
func (t VTime) String() string {
	if t == 0 {
		return "0s"
	}

	for i := len(timeUnits) - 1; i >= 0; i-- {
		u := timeUnits[i]
		if t >= u.unit {
			v := float64(t) / float64(u.unit)
			return strconv.FormatFloat(v, 'f', -1, 64) + u.suffix
		}
	}

	return fmt.Sprintf("%dps", uint64(t))
}

// ParseVTime parses strings like "10ms", "0.1ms", "250ns", or "1s". A bare
// number is taken as milliseconds, the node time unit.
func ParseVTime(s string) (VTime, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty time value")
	}

	unit := Ms
	number := s
	for _, u := range timeUnits {
		if strings.HasSuffix(s, u.suffix) {
			candidate := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			if _, err := strconv.ParseFloat(candidate, 64); err == nil {
				unit = u.unit
				number = candidate
			}
		}
	}

	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time value %q", s)
	}

	if v < 0 {
		return 0, fmt.Errorf("negative time value %q", s)
	}

	return VTime(math.Round(v * float64(unit))), nil
}
