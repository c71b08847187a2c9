package services

import (
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
)

type CalendarDayState struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	InMonth  bool   `json:"in_month"`
	IsToday  bool   `json:"is_today"`
	Taken    bool   `json:"taken"`
	Missed   bool   `json:"missed"`
	Pending  bool   `json:"pending"`
	Future   bool   `json:"future"`
	HasPhoto bool   `json:"has_photo"`
}

type CalendarMonth struct {
	Month string             `json:"month"`
	Days  []CalendarDayState `json:"days"`
}

// BuildCalendarMonth lays out the Sunday-first grid covering month and marks
// every day against records as of now.
func BuildCalendarMonth(month time.Time, records []models.IntakeRecord, now time.Time, location *time.Location) CalendarMonth {
	monthStart := MonthStart(month, location)
	monthEnd := monthStart.AddDate(0, 1, -1)
	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))
	gridEnd := monthEnd.AddDate(0, 0, 6-int(monthEnd.Weekday()))

	byDate := make(map[string]models.IntakeRecord, len(records))
	for _, record := range records {
		existing, exists := byDate[record.Date]
		if !exists || (record.IsTaken && !existing.IsTaken) {
			byDate[record.Date] = record
		}
	}

	todayKey := DateKey(now, location)

	days := make([]CalendarDayState, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		key := day.Format(models.DateLayout)
		record, hasRecord := byDate[key]
		taken := hasRecord && record.IsTaken
		inMonth := day.Month() == monthStart.Month()

		days = append(days, CalendarDayState{
			Date:     key,
			Day:      day.Day(),
			InMonth:  inMonth,
			IsToday:  key == todayKey,
			Taken:    taken,
			Missed:   inMonth && key < todayKey && !taken,
			Pending:  key == todayKey && !taken,
			Future:   key > todayKey,
			HasPhoto: hasRecord && record.HasProofPhoto(),
		})
	}

	return CalendarMonth{
		Month: monthStart.Format("2006-01"),
		Days:  days,
	}
}

// ParseMonth accepts yyyy-MM and falls back to the month of now.
func ParseMonth(raw string, now time.Time, location *time.Location) (time.Time, error) {
	if raw == "" {
		return MonthStart(now, location), nil
	}
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation("2006-01", raw, location)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return parsed, nil
}
