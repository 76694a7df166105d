package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxAge is the freshness threshold applied when the caller does not
// configure one.
const DefaultMaxAge = 24 * time.Hour

const (
	minutesPerHour = 60
	hoursPerDay    = 24
)

// FormatDuration formats a duration for listings.
// Examples: "30s", "5m", "2h30m", "3d2h".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseMaxAge parses an age threshold in the formats users pass on the
// command line:
//   - plain integer seconds: "3600"
//   - Go duration string: "30m", "1h30m"
//   - day suffix: "3d", "3d12h"
func ParseMaxAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	// Expand a leading day component, which time.ParseDuration lacks.
	if i := strings.IndexByte(s, 'd'); i > 0 {
		days, err := strconv.Atoi(s[:i])
		if err == nil {
			rest := time.Duration(0)
			if tail := s[i+1:]; tail != "" {
				rest, err = time.ParseDuration(tail)
				if err != nil {
					return 0, fmt.Errorf("invalid duration %q: %w", s, err)
				}
			}
			return time.Duration(days)*hoursPerDay*time.Hour + rest, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
