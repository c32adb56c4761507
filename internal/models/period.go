package models

import (
	"errors"
	"time"
)

// ErrInvalidBillingPeriod is returned when a billing period string does not match the fee's recurrence.
var ErrInvalidBillingPeriod = errors.New("periodo de facturación inválido")

const (
	monthlyPeriodLayout = "2006-01"
	annualPeriodLayout  = "2006"
	dateLayout          = "2006-01-02"
)

// DateOnly truncates t to midnight UTC of its calendar day in t's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// BillingPeriodFor returns the period key a fee with the given recurrence is billed under at date at.
// One-time fees have no period.
func BillingPeriodFor(feePeriod string, at time.Time) string {
	switch feePeriod {
	case FeePeriodMonthly:
		return at.Format(monthlyPeriodLayout)
	case FeePeriodAnnual:
		return at.Format(annualPeriodLayout)
	default:
		return ""
	}
}

// ParseBillingPeriod normalizes raw into the period key for feePeriod.
// Monthly fees take "YYYY-MM"; annual fees take "YYYY" or "YYYY-MM"; one-time fees ignore raw.
func ParseBillingPeriod(feePeriod, raw string) (string, error) {
	switch feePeriod {
	case FeePeriodMonthly:
		t, err := time.Parse(monthlyPeriodLayout, raw)
		if err != nil {
			return "", ErrInvalidBillingPeriod
		}
		return t.Format(monthlyPeriodLayout), nil
	case FeePeriodAnnual:
		if t, err := time.Parse(annualPeriodLayout, raw); err == nil {
			return t.Format(annualPeriodLayout), nil
		}
		t, err := time.Parse(monthlyPeriodLayout, raw)
		if err != nil {
			return "", ErrInvalidBillingPeriod
		}
		return t.Format(annualPeriodLayout), nil
	case FeePeriodOneTime:
		return "", nil
	default:
		return "", ErrInvalidBillingPeriod
	}
}

// DueDateInMonth returns day of the given month, clamped to the month's last day.
func DueDateInMonth(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 {
		day = 1
	}
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
