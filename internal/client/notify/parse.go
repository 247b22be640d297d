package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Johnwickx812/MediNutri/internal/common"
)

// ParseHHMM parses a daily reminder time in "HH:MM" form.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", common.ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w: invalid hour in %q", common.ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: invalid minute in %q", common.ErrInvalidTime, s)
	}
	return h, m, nil
}

// NextOccurrence returns the next future wall-clock instant of hour:minute
// relative to now. If that time of day has already passed (or is exactly
// now), the target is tomorrow.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}
