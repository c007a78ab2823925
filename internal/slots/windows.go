package slots

import "time"

const (
	firstWindowHour = 11
	lastWindowHour  = 20
	windowLength    = 30 * time.Minute
	minLeadTime     = 15 * time.Minute
	maxWindows      = 8

	labelLayout = "3:04 PM"
)

// GenerateWindows lists today's half-hour pickup windows (11:00 through the
// 20:30 start) that begin at least 15 minutes after now, at most 8 of them.
// Labels look like "12:30 PM - 1:00 PM".
func GenerateWindows(now time.Time) []string {
	earliest := now.Add(minLeadTime)
	year, month, day := now.Date()

	var windows []string
	for hour := firstWindowHour; hour <= lastWindowHour; hour++ {
		for minute := 0; minute < 60; minute += 30 {
			start := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
			if start.Before(earliest) {
				continue
			}
			windows = append(windows, formatWindow(start))
			if len(windows) == maxWindows {
				return windows
			}
		}
	}

	return windows
}

func formatWindow(start time.Time) string {
	return start.Format(labelLayout) + " - " + start.Add(windowLength).Format(labelLayout)
}

// IsWindowLabel reports whether label names one of the day's windows,
// regardless of lead time.
func IsWindowLabel(label string) bool {
	day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for hour := firstWindowHour; hour <= lastWindowHour; hour++ {
		for minute := 0; minute < 60; minute += 30 {
			if formatWindow(day.Add(time.Duration(hour)*time.Hour+time.Duration(minute)*time.Minute)) == label {
				return true
			}
		}
	}
	return false
}
