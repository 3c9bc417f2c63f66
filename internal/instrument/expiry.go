package instrument

import (
	"strconv"
	"strings"
	"time"

	"github.com/quantshed/optiongreeks/internal/domain"
)

const hoursPerDay = 24

// ParseExpiry parses a broker expiry code into a calendar date.
//
// Two shapes are accepted: an exact date like "29-JAN-25", or a month-year
// code like "MAR-25" which resolves to the contract's conventional expiry,
// the third Friday of that month. Matching is case-insensitive.
func ParseExpiry(expiry string) (time.Time, error) {
	parts := strings.Split(expiry, "-")

	switch len(parts) {
	case 3:
		normalized := parts[0] + "-" + titleMonth(parts[1]) + "-" + parts[2]
		d, err := time.ParseInLocation("02-Jan-06", normalized, time.UTC)
		if err != nil {
			return time.Time{}, &domain.ParseError{Input: expiry, Reason: "invalid expiry date"}
		}
		return d, nil

	case 2:
		m, err := time.ParseInLocation("Jan", titleMonth(parts[0]), time.UTC)
		if err != nil {
			return time.Time{}, &domain.ParseError{Input: expiry, Reason: "invalid expiry month"}
		}
		yy, err := strconv.Atoi(parts[1])
		if err != nil || yy < 0 {
			return time.Time{}, &domain.ParseError{Input: expiry, Reason: "invalid expiry year"}
		}
		return thirdFriday(2000+yy, m.Month()), nil

	default:
		return time.Time{}, &domain.ParseError{Input: expiry, Reason: "unrecognized expiry format"}
	}
}

// thirdFriday enumerates the Fridays of the month and returns the third
func thirdFriday(year int, month time.Month) time.Time {
	var fridays []time.Time

	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Month() == month {
		if d.Weekday() == time.Friday {
			fridays = append(fridays, d)
		}
		d = d.AddDate(0, 0, 1)
	}

	// Every month has at least four Fridays
	return fridays[2]
}

// TimeToExpiry returns the year fraction between now and the expiry code,
// never negative and floored at 0.001 so that same-day options keep a
// nonzero time value for the volatility solve.
func TimeToExpiry(expiry string, now time.Time) (float64, error) {
	expiryDate, err := ParseExpiry(expiry)
	if err != nil {
		return 0, err
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	days := int(expiryDate.Sub(today).Hours() / hoursPerDay)
	if days < 0 {
		days = 0
	}

	t := float64(days) / 365.0
	if t < 0.001 {
		t = 0.001
	}
	return t, nil
}

// titleMonth normalizes "JAN"/"jan" to the "Jan" form time.Parse expects
func titleMonth(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
