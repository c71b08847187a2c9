package db

import (
	"github.com/terraincognita07/medtrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaretakerLinkRepository struct {
	database *gorm.DB
}

func NewCaretakerLinkRepository(database *gorm.DB) *CaretakerLinkRepository {
	return &CaretakerLinkRepository{database: database}
}

func (repo *CaretakerLinkRepository) ListByCaretaker(caretakerID uint) ([]models.CaretakerLink, error) {
	links := make([]models.CaretakerLink, 0)
	if err := repo.database.
		Where("caretaker_id = ?", caretakerID).
		Order("created_at ASC, id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (repo *CaretakerLinkRepository) Exists(caretakerID uint, patientID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.CaretakerLink{}).
		Where("caretaker_id = ? AND patient_id = ?", caretakerID, patientID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *CaretakerLinkRepository) CreateIfAbsent(link *models.CaretakerLink) (bool, error) {
	result := repo.database.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
