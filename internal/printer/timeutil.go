package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a human-readable relative time string for a past instant.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	return humanDuration(diff) + " ago (UTC)"
}

// TimeUntil returns a human-readable relative time string for a future instant.
// Examples: "in 5 seconds", "in 2 days", "reached".
func TimeUntil(t time.Time) string {
	diff := t.UTC().Sub(time.Now().UTC())
	if diff <= 0 {
		return "reached"
	}

	return "in " + humanDuration(diff)
}

func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return plural(int(d.Seconds()), "second")
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
