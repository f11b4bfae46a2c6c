package broker

import (
	"fmt"
	"time"
)

// KRX regular session, local exchange time.
const (
	sessionOpenHour   = 9
	sessionOpenMin    = 0
	sessionCloseHour  = 15
	sessionCloseMin   = 30
	holidayDateLayout = "2006-01-02"
)

// MarketClock implements MarketHours for the KRX regular session:
// weekdays 09:00-15:30 exchange time, minus configured holidays.
type MarketClock struct {
	loc      *time.Location
	holidays map[string]struct{}
}

// NewMarketClock builds a clock for the given timezone name (defaults to
// Asia/Seoul) and holiday list in YYYY-MM-DD form.
func NewMarketClock(timezone string, holidays []string) (*MarketClock, error) {
	if timezone == "" {
		timezone = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading market timezone failed: %w", err)
	}
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(holidayDateLayout, h); err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		set[h] = struct{}{}
	}
	return &MarketClock{loc: loc, holidays: set}, nil
}

var _ MarketHours = (*MarketClock)(nil)

// CanExecuteOrder reports whether the regular session is open at now.
func (c *MarketClock) CanExecuteOrder(now time.Time) (bool, string) {
	local := now.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false, "market closed: weekend"
	}
	if _, ok := c.holidays[local.Format(holidayDateLayout)]; ok {
		return false, "market closed: exchange holiday"
	}
	minutes := local.Hour()*60 + local.Minute()
	open := sessionOpenHour*60 + sessionOpenMin
	close := sessionCloseHour*60 + sessionCloseMin
	if minutes < open {
		return false, "market closed: before session open"
	}
	if minutes > close {
		return false, "market closed: after session close"
	}
	return true, ""
}
