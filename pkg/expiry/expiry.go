// Package expiry derives food status from calendar dates.
package expiry

import (
	"math"
	"regexp"
	"time"

	"freshkeep-backend/domain"
)

// DefaultExpiringThreshold is the last day-offset still reported as expiring.
const DefaultExpiringThreshold = 3

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate accepts only YYYY-MM-DD calendar dates that actually exist.
func ParseDate(s string) (time.Time, error) {
	if !dateFormat.MatchString(s) {
		return time.Time{}, domain.ErrInvalidExpiryDate
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidExpiryDate
	}
	return t, nil
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil counts calendar days from today to target. The target's calendar
// date is read in its own location and today's in today's location, so the
// time of day of either argument never changes the result.
func DaysUntil(target, today time.Time) int {
	ty, tm, td := target.Date()
	ny, nm, nd := today.Date()
	// Comparing in UTC keeps DST transitions from producing 23h or 25h days.
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(n).Hours() / 24))
}

// Classify maps a day-offset to a status using the inclusive threshold.
func Classify(days, threshold int) domain.FoodStatus {
	switch {
	case days < 0:
		return domain.StatusExpired
	case days <= threshold:
		return domain.StatusExpiring
	default:
		return domain.StatusFresh
	}
}

// StatusOf combines DaysUntil and Classify with the default threshold.
func StatusOf(target, now time.Time) (domain.FoodStatus, int) {
	days := DaysUntil(target, now)
	return Classify(days, DefaultExpiringThreshold), days
}
