package tools

import (
	"context"
	"strings"
	"time"
)

// DateTime answers date and time questions against a clock. The zero
// value uses the system clock; tests inject a fixed one.
type DateTime struct {
	Now func() time.Time
}

// Name implements Tool.
func (DateTime) Name() string { return "datetime" }

// Description implements Tool.
func (DateTime) Description() string {
	return "Report the current date, time, year, or weekday. Input is one of: date, time, year, weekday, full."
}

// Execute implements Tool.
func (d DateTime) Execute(ctx context.Context, input string) (string, error) {
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "time":
		return now.Format("15:04:05"), nil
	case "year":
		return now.Format("2006"), nil
	case "weekday":
		return now.Weekday().String(), nil
	case "full":
		return now.Format("Monday, January 2, 2006 15:04:05"), nil
	default:
		return now.Format("2006-01-02"), nil
	}
}
