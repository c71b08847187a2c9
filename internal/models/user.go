package models

import "time"

const (
	RolePatient   = "patient"
	RoleCaretaker = "caretaker"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	Role               string    `gorm:"not null;default:patient" json:"role"`
	DisplayName        string    `gorm:"not null;default:''" json:"display_name"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func IsValidRole(role string) bool {
	return role == RolePatient || role == RoleCaretaker
}
