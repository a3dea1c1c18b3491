package aeronet

import (
	"fmt"
	"strings"
	"time"
)

// Markers used by AERONET headers to name the date and time columns.
const (
	DateMarker = "dd:mm:yyyy"
	TimeMarker = "hh:mm:ss"
)

// DateToken is a calendar date in the fixed dd:mm:yyyy layout.
type DateToken string

// TimeToken is a time of day in the fixed hh:mm:ss layout.
type TimeToken string

const instantLayout = "02:01:2006 15:04:05"

var monthsWith31Days = map[int]bool{1: true, 3: true, 5: true, 7: true, 8: true, 10: true, 12: true}

// NewDateToken formats day, month and year as a DateToken.
func NewDateToken(day, month, year int) DateToken {
	return DateToken(fmt.Sprintf("%02d:%02d:%04d", day, month, year))
}

// NewTimeToken formats hour, minute and second as a TimeToken.
func NewTimeToken(hour, minute, second int) TimeToken {
	return TimeToken(fmt.Sprintf("%02d:%02d:%02d", hour, minute, second))
}

// Valid reports whether d has the dd:mm:yyyy shape.
func (d DateToken) Valid() bool {
	s := string(d)
	if len(s) != len(DateMarker) || s[2] != ':' || s[5] != ':' {
		return false
	}
	return allDigits(s[0:2]) && allDigits(s[3:5]) && allDigits(s[6:10])
}

// Day returns the dd part of the token.
func (d DateToken) Day() int { return digits(string(d), 0, 2) }

// Month returns the mm part of the token.
func (d DateToken) Month() int { return digits(string(d), 3, 5) }

// Year returns the yyyy part of the token.
func (d DateToken) Year() int { return digits(string(d), 6, 10) }

// DayString returns the two-character day slice.
func (d DateToken) DayString() string { return slice(string(d), 0, 2) }

// YearString returns the four-character year slice.
func (d DateToken) YearString() string { return slice(string(d), 6, 10) }

// PreviousDay steps the token back one calendar day, rolling the month and
// year over as needed.
func (d DateToken) PreviousDay() DateToken {
	day, month, year := d.Day(), d.Month(), d.Year()
	if day > 1 {
		return NewDateToken(day-1, month, year)
	}
	if month == 1 {
		return NewDateToken(31, 12, year-1)
	}
	return NewDateToken(DaysInMonth(month-1, year), month-1, year)
}

// NextDay steps the token forward one calendar day.
func (d DateToken) NextDay() DateToken {
	day, month, year := d.Day(), d.Month(), d.Year()
	if day < DaysInMonth(month, year) {
		return NewDateToken(day+1, month, year)
	}
	if month == 12 {
		return NewDateToken(1, 1, year+1)
	}
	return NewDateToken(1, month+1, year)
}

// IsLeapYear applies the Gregorian leap year rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(month, year int) int {
	switch {
	case month == 2 && IsLeapYear(year):
		return 29
	case month == 2:
		return 28
	case monthsWith31Days[month]:
		return 31
	default:
		return 30
	}
}

// Valid reports whether t has the hh:mm:ss shape.
func (t TimeToken) Valid() bool {
	s := string(t)
	if len(s) != len(TimeMarker) || s[2] != ':' || s[5] != ':' {
		return false
	}
	return allDigits(s[0:2]) && allDigits(s[3:5]) && allDigits(s[6:8])
}

// Hour returns the hh part of the token.
func (t TimeToken) Hour() int { return digits(string(t), 0, 2) }

// Minute returns the mm part of the token.
func (t TimeToken) Minute() int { return digits(string(t), 3, 5) }

// HourDigits returns the tens and units digits of the hour. The legacy
// day/night table is expressed in terms of these two characters.
func (t TimeToken) HourDigits() (tens, units int) {
	return digits(string(t), 0, 1), digits(string(t), 1, 2)
}

// ShiftTokens moves a date/time pair by a whole number of hours in the range
// [-23, 23] using token arithmetic only.
func ShiftTokens(d DateToken, t TimeToken, hours int) (DateToken, TimeToken, error) {
	if hours < -23 || hours > 23 {
		return d, t, fmt.Errorf("hour offset %d out of range", hours)
	}
	if !d.Valid() || !t.Valid() {
		return d, t, fmt.Errorf("malformed date/time %q %q", d, t)
	}

	hour := t.Hour() + hours
	switch {
	case hour < 0:
		hour += 24
		d = d.PreviousDay()
	case hour > 23:
		hour -= 24
		d = d.NextDay()
	}
	return d, TimeToken(fmt.Sprintf("%02d", hour) + string(t)[2:]), nil
}

// ParseInstant interprets a date/time pair as a UTC instant.
func ParseInstant(d DateToken, t TimeToken) (time.Time, error) {
	return time.ParseInLocation(instantLayout, string(d)+" "+string(t), time.UTC)
}

// TokensIn converts a UTC date/time pair into tokens for loc.
func TokensIn(d DateToken, t TimeToken, loc *time.Location) (DateToken, TimeToken, error) {
	instant, err := ParseInstant(d, t)
	if err != nil {
		return d, t, err
	}
	local := instant.In(loc)
	return NewDateToken(local.Day(), int(local.Month()), local.Year()),
		NewTimeToken(local.Hour(), local.Minute(), local.Second()), nil
}

var (
	monthAbbrevs = []string{"Jan.", "Feb.", "Mar.", "Apr.", "May.", "Jun.", "Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec."}
	monthNames   = []string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"}
)

// MonthAbbrev returns the tick label prefix for month (1-12), e.g. "Mar.".
func MonthAbbrev(month int) string {
	if month < 1 || month > 12 {
		return "???."
	}
	return monthAbbrevs[month-1]
}

// ParseMonth accepts a month number ("3", "03"), a full name ("March") or an
// abbreviation with or without the trailing period ("Mar.", "mar").
func ParseMonth(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if allDigits(s) && len(s) <= 2 {
		if m := digits(s, 0, len(s)); m >= 1 && m <= 12 {
			return m, true
		}
		return 0, false
	}
	for i, name := range monthNames {
		if s == name || strings.TrimSuffix(s, ".") == name[:3] {
			return i + 1, true
		}
	}
	return 0, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// digits decodes s[from:to] as a decimal number. Out-of-range or non-digit
// slices decode to -1.
func digits(s string, from, to int) int {
	if to > len(s) || from >= to {
		return -1
	}
	n := 0
	for i := from; i < to; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func slice(s string, from, to int) string {
	if to > len(s) {
		return ""
	}
	return s[from:to]
}
