// Package asn1time converts between time.Time and the textual conventions of
// the ASN.1 time types. Formatting is canonical: UTC, trailing Z, seconds
// precision for UTCTime, trimmed fractional seconds for GeneralizedTime.
// Parsing is lenient about the optional parts each type allows.
package asn1time

import (
	"time"
)

var utcLayouts = []string{
	// Z or numeric offset, with and without seconds.
	"060102150405Z0700",
	"0601021504Z0700",
	// Local form without zone designator.
	"060102150405",
	"0601021504",
}

var generalizedLayouts = []string{
	// Parse accepts a fractional second after the seconds field even when the
	// layout does not carry one.
	"20060102150405Z0700",
	"20060102150405",
	"200601021504Z0700",
	"200601021504",
	"2006010215Z0700",
	"2006010215",
}

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04:05"
	dateTimeLayout  = "2006-01-02T15:04:05"
)

// ParseUTCTime parses "YYMMDDHHMM[SS][Z|±hhmm]".
func ParseUTCTime(s string) (time.Time, error) {
	return parseLayouts(utcLayouts, s)
}

// FormatUTCTime renders the canonical "YYMMDDHHMMSSZ" form.
func FormatUTCTime(t time.Time) string {
	return t.UTC().Format("060102150405") + "Z"
}

// ParseGeneralizedTime parses "YYYYMMDDHH[MMSS][.f*][Z|±hhmm]".
func ParseGeneralizedTime(s string) (time.Time, error) {
	return parseLayouts(generalizedLayouts, s)
}

// FormatGeneralizedTime renders the canonical "YYYYMMDDHHMMSS[.f*]Z" form
// with trailing fraction zeros removed.
func FormatGeneralizedTime(t time.Time) string {
	return t.UTC().Format("20060102150405.999999999") + "Z"
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseTimeOfDay parses "HH:MM:SS". The date part of the result is the zero
// reference day.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse(timeOfDayLayout, s)
}

// FormatTimeOfDay renders "HH:MM:SS".
func FormatTimeOfDay(t time.Time) string {
	return t.UTC().Format(timeOfDayLayout)
}

// ParseDateTime parses "YYYY-MM-DDTHH:MM:SS".
func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(dateTimeLayout, s)
}

// FormatDateTime renders "YYYY-MM-DDTHH:MM:SS".
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeLayout)
}

func parseLayouts(layouts []string, s string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
