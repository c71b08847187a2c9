package db

import "gorm.io/gorm"

type Repositories struct {
	Users          *UserRepository
	IntakeRecords  *IntakeRecordRepository
	CaretakerLinks *CaretakerLinkRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(database),
		IntakeRecords:  NewIntakeRecordRepository(database),
		CaretakerLinks: NewCaretakerLinkRepository(database),
	}
}
