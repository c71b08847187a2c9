package models

import "time"

// DateLayout is the storage and wire format of IntakeRecord.Date.
const DateLayout = "2006-01-02"

// IntakeRecord is one patient's medication intake for a calendar date.
// (PatientID, Date) is unique.
type IntakeRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	PatientID      uint       `gorm:"not null;uniqueIndex:uidx_intake_patient_date" json:"patient_id"`
	Date           string     `gorm:"type:text;not null;uniqueIndex:uidx_intake_patient_date" json:"date"`
	IsTaken        bool       `gorm:"not null;default:false" json:"is_taken"`
	MedicationName string     `gorm:"not null;default:''" json:"medication_name"`
	Dosage         string     `gorm:"not null;default:''" json:"dosage"`
	Frequency      string     `gorm:"not null;default:''" json:"frequency"`
	Description    string     `gorm:"not null;default:''" json:"description"`
	ProofPhotoURL  string     `gorm:"column:proof_photo_url;not null;default:''" json:"proof_photo_url,omitempty"`
	TakenAt        *time.Time `json:"taken_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (record IntakeRecord) HasProofPhoto() bool {
	return record.ProofPhotoURL != ""
}
