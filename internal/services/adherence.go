package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
)

const (
	TodayStatusCompleted = "completed"
	TodayStatusPending   = "pending"

	// assumedMonthLength is the fixed window remainingThisMonth is measured
	// against. DaysLeftInMonth carries the calendar-accurate value.
	assumedMonthLength  = 30
	recentActivityLimit = 5
)

type ActivityEntry struct {
	Date          string `json:"date"`
	Taken         bool   `json:"taken"`
	ProofPhotoURL string `json:"proof_photo_url,omitempty"`
}

type AdherenceSummary struct {
	AdherenceRatePercent int                  `json:"adherence_rate_percent"`
	CurrentStreak        int                  `json:"current_streak"`
	MissedThisMonth      int                  `json:"missed_this_month"`
	RemainingThisMonth   int                  `json:"remaining_this_month"`
	DaysLeftInMonth      int                  `json:"days_left_in_month"`
	RecentActivity       []ActivityEntry      `json:"recent_activity"`
	TakenDates           []string             `json:"taken_dates"`
	TodayStatus          string               `json:"today_status"`
	TodayRecord          *models.IntakeRecord `json:"today_record,omitempty"`
}

// ComputeSummary derives the adherence summary of one patient's records as of
// asOf. Dates are compared as yyyy-MM-dd keys in location. The input slice is
// not modified.
func ComputeSummary(records []models.IntakeRecord, asOf time.Time, location *time.Location) AdherenceSummary {
	today := DateAtLocation(asOf, location)
	todayKey := today.Format(models.DateLayout)

	takenDates := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.IsTaken {
			takenDates[record.Date] = struct{}{}
		}
	}

	summary := AdherenceSummary{
		AdherenceRatePercent: roundedPercent(len(takenDates), len(records)),
		TakenDates:           sortedKeys(takenDates),
		TodayStatus:          TodayStatusPending,
	}

	for cursor := today; ; cursor = cursor.AddDate(0, 0, -1) {
		if _, taken := takenDates[cursor.Format(models.DateLayout)]; !taken {
			break
		}
		summary.CurrentStreak++
	}

	elapsed := today.Day()
	takenThisMonth := 0
	for cursor := MonthStart(today, location); !cursor.After(today); cursor = cursor.AddDate(0, 0, 1) {
		if _, taken := takenDates[cursor.Format(models.DateLayout)]; taken {
			takenThisMonth++
		}
	}
	summary.MissedThisMonth = elapsed - takenThisMonth
	summary.RemainingThisMonth = assumedMonthLength - elapsed
	summary.DaysLeftInMonth = DaysInMonth(today) - elapsed

	summary.RecentActivity = recentActivity(records)

	if _, taken := takenDates[todayKey]; taken {
		summary.TodayStatus = TodayStatusCompleted
	}
	for index := range records {
		if records[index].Date == todayKey {
			record := records[index]
			summary.TodayRecord = &record
			break
		}
	}

	return summary
}

// roundedPercent is round-half-up of 100*part/total, 0 for an empty total.
func roundedPercent(part int, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

func recentActivity(records []models.IntakeRecord) []ActivityEntry {
	ordered := make([]models.IntakeRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date > ordered[j].Date
	})
	if len(ordered) > recentActivityLimit {
		ordered = ordered[:recentActivityLimit]
	}

	entries := make([]ActivityEntry, 0, len(ordered))
	for _, record := range ordered {
		entries = append(entries, ActivityEntry{
			Date:          record.Date,
			Taken:         record.IsTaken,
			ProofPhotoURL: record.ProofPhotoURL,
		})
	}
	return entries
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
