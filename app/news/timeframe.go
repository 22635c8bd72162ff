package news

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Timeframe string

const (
	TimeframeAll   Timeframe = ""
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

var ErrInvalidTimeframe = errors.New("timeframe must be one of day, week, month")

func ParseTimeframe(value string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(value))); tf {
	case TimeframeAll, TimeframeDay, TimeframeWeek, TimeframeMonth:
		return tf, nil
	case "all":
		return TimeframeAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, value)
}

// Since returns the start of the window ending at now, or nil for no window
func (tf Timeframe) Since(now time.Time) *time.Time {
	var since time.Time
	switch tf {
	case TimeframeDay:
		since = now.AddDate(0, 0, -1)
	case TimeframeWeek:
		since = now.AddDate(0, 0, -7)
	case TimeframeMonth:
		since = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &since
}
