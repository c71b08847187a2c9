package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DateKey formats the calendar day of value in location as yyyy-MM-dd.
func DateKey(value time.Time, location *time.Location) string {
	return DateAtLocation(value, location).Format(models.DateLayout)
}

// ParseDateKey parses a strict yyyy-MM-dd date at midnight in location.
func ParseDateKey(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	value := strings.TrimSpace(raw)
	if len(value) != len(models.DateLayout) {
		return time.Time{}, ErrInvalidIntakeDate
	}
	parsed, err := time.ParseInLocation(models.DateLayout, value, location)
	if err != nil {
		return time.Time{}, ErrInvalidIntakeDate
	}
	return parsed, nil
}

func MonthStart(value time.Time, location *time.Location) time.Time {
	day := DateAtLocation(value, location)
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
}

func DaysInMonth(value time.Time) int {
	return time.Date(value.Year(), value.Month()+1, 0, 0, 0, 0, 0, value.Location()).Day()
}
