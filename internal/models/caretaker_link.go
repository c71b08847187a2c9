package models

import "time"

// CaretakerLink authorises a caretaker to monitor one patient.
type CaretakerLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CaretakerID uint      `gorm:"not null;uniqueIndex:uidx_caretaker_patient" json:"caretaker_id"`
	PatientID   uint      `gorm:"not null;uniqueIndex:uidx_caretaker_patient;index" json:"patient_id"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
