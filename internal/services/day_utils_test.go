package services

import (
	"errors"
	"testing"
	"time"
)

func TestDateKeyUsesLocation(t *testing.T) {
	location := time.FixedZone("UTC+3", 3*60*60)
	instant := time.Date(2024, time.January, 31, 22, 30, 0, 0, time.UTC)

	if got := DateKey(instant, time.UTC); got != "2024-01-31" {
		t.Fatalf("expected UTC key 2024-01-31, got %s", got)
	}
	if got := DateKey(instant, location); got != "2024-02-01" {
		t.Fatalf("expected shifted key 2024-02-01, got %s", got)
	}
}

func TestParseDateKeyIsStrict(t *testing.T) {
	parsed, err := ParseDateKey(" 2024-02-29 ", time.UTC)
	if err != nil || parsed.Day() != 29 {
		t.Fatalf("expected leap day to parse, got %v err=%v", parsed, err)
	}

	for _, raw := range []string{"2023-02-29", "2024-2-01", "2024/02/01", "", "2024-02-01T00:00:00Z"} {
		if _, err := ParseDateKey(raw, time.UTC); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("ParseDateKey(%q) expected malformed input, got %v", raw, err)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := map[string]int{
		"2024-02-10": 29,
		"2023-02-10": 28,
		"2024-04-30": 30,
		"2024-12-01": 31,
	}
	for raw, want := range tests {
		day, _ := ParseDateKey(raw, time.UTC)
		if got := DaysInMonth(day); got != want {
			t.Fatalf("DaysInMonth(%s) = %d, want %d", raw, got, want)
		}
	}
}
