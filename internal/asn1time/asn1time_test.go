package asn1time

import (
	"testing"
	"time"
)

func TestUTCTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	cases := []string{
		"240501123045Z",     // canonical
		"240501123045",      // no zone, read as UTC
		"240501143045+0200", // offset form
	}
	for _, s := range cases {
		got, err := ParseUTCTime(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: want %v, got %v", s, want, got)
		}
	}

	// Minute precision drops the seconds.
	got, err := ParseUTCTime("2405011230Z")
	if err != nil || !got.Equal(want.Add(-45*time.Second)) {
		t.Fatalf("minute form: got %v (%v)", got, err)
	}

	if got := FormatUTCTime(want); got != "240501123045Z" {
		t.Fatalf("canonical form mismatch: %q", got)
	}
	// Formatting always converts to UTC first.
	offset := want.In(time.FixedZone("X", 2*60*60))
	if got := FormatUTCTime(offset); got != "240501123045Z" {
		t.Fatalf("expected UTC normalization, got %q", got)
	}

	if _, err := ParseUTCTime("nope"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestGeneralizedTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 45, 250_000_000, time.UTC)
	cases := []string{
		"20240501123045.25Z",
		"20240501123045.25",
		"20240501143045.25+0200",
	}
	for _, s := range cases {
		got, err := ParseGeneralizedTime(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: want %v, got %v", s, want, got)
		}
	}

	// Hour and minute precision forms.
	hour, err := ParseGeneralizedTime("2024050112Z")
	if err != nil || !hour.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("hour form: got %v (%v)", hour, err)
	}
	minute, err := ParseGeneralizedTime("202405011230")
	if err != nil || !minute.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)) {
		t.Fatalf("minute form: got %v (%v)", minute, err)
	}

	if got := FormatGeneralizedTime(want); got != "20240501123045.25Z" {
		t.Fatalf("canonical form mismatch: %q", got)
	}
	// A zero fraction disappears entirely.
	if got := FormatGeneralizedTime(want.Truncate(time.Second)); got != "20240501123045Z" {
		t.Fatalf("expected the fraction trimmed, got %q", got)
	}
}

func TestDate(t *testing.T) {
	got, err := ParseDate("2031-12-03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2031, 12, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if got := FormatDate(want); got != "2031-12-03" {
		t.Fatalf("format mismatch: %q", got)
	}
	if _, err := ParseDate("12/03/2031"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("23:59:07")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 7 {
		t.Fatalf("clock mismatch: %v", got)
	}
	if s := FormatTimeOfDay(got); s != "23:59:07" {
		t.Fatalf("format mismatch: %q", s)
	}
	if _, err := ParseTimeOfDay("23:59"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestDateTime(t *testing.T) {
	got, err := ParseDateTime("2024-05-01T12:30:45")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if s := FormatDateTime(want); s != "2024-05-01T12:30:45" {
		t.Fatalf("format mismatch: %q", s)
	}
	// No zone suffix belongs in this form.
	if _, err := ParseDateTime("2024-05-01T12:30:45Z"); err == nil {
		t.Fatalf("expected an error")
	}
}
