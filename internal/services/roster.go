package services

import (
	"strings"

	"github.com/terraincognita07/medtrack/internal/models"
)

type RosterEntry struct {
	PatientID   uint    `json:"patient_id"`
	DisplayName *string `json:"display_name"`
}

// ComputeLinkedPatientRoster joins links to patient profiles in link order.
// A link without a profile stays in the roster with a nil DisplayName.
func ComputeLinkedPatientRoster(links []models.CaretakerLink, profiles []models.User) []RosterEntry {
	profileByID := make(map[uint]models.User, len(profiles))
	for _, profile := range profiles {
		profileByID[profile.ID] = profile
	}

	roster := make([]RosterEntry, 0, len(links))
	for _, link := range links {
		entry := RosterEntry{PatientID: link.PatientID}
		if profile, ok := profileByID[link.PatientID]; ok {
			name := ProfileDisplayName(profile)
			entry.DisplayName = &name
		}
		roster = append(roster, entry)
	}
	return roster
}

// ProfileDisplayName prefers the chosen display name, then the local part of
// the email address.
func ProfileDisplayName(profile models.User) string {
	if name := strings.TrimSpace(profile.DisplayName); name != "" {
		return name
	}
	email := strings.TrimSpace(profile.Email)
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}
