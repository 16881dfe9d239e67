package store

import "time"

const timeFmt = time.RFC3339

// nowFunc is overridden in tests that need a fixed clock.
var nowFunc = time.Now

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFmt)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{timeFmt, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
