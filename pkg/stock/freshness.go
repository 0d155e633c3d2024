package stock

import (
	"time"

	"Pantry-Service/domain"
)

// DeriveFreshness tags an item from its expiry date as seen on day now.
// Items without an expiry date are fresh.
func DeriveFreshness(expiry *time.Time, now time.Time) string {
	if expiry == nil {
		return domain.FreshnessFresh
	}

	today := domain.CalendarDay(now)
	day := domain.CalendarDay(*expiry)

	switch {
	case day.Before(today):
		return domain.FreshnessExpired
	case !day.After(today.AddDate(0, 0, domain.ExpiringSoonDays)):
		return domain.FreshnessExpiringSoon
	default:
		return domain.FreshnessFresh
	}
}

// parseDate accepts an empty string as "no date".
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &t, nil
}
