// internal/app/system/compose/dates.go
package compose

import "time"

// Display formats for composed views. Instants render with time-of-day,
// date-only fields (birth date, project start/end) without. Both are UTC.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

// FormatDateTime renders an instant as "YYYY-MM-DD HH:MM:SS" in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// FormatDateTimePtr renders a nullable instant; nil renders empty.
func FormatDateTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDateTime(*t)
}

// FormatDate renders a date-only value as "YYYY-MM-DD" in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatDatePtr renders a nullable date-only value; nil renders as the
// empty string, never as "null".
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}
