package db

import (
	"github.com/terraincognita07/medtrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IntakeRecordRepository struct {
	database *gorm.DB
}

func NewIntakeRecordRepository(database *gorm.DB) *IntakeRecordRepository {
	return &IntakeRecordRepository{database: database}
}

func (repo *IntakeRecordRepository) ListByPatient(patientID uint) ([]models.IntakeRecord, error) {
	records := make([]models.IntakeRecord, 0)
	if err := repo.database.
		Where("patient_id = ?", patientID).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *IntakeRecordRepository) ListTakenByPatient(patientID uint) ([]models.IntakeRecord, error) {
	records := make([]models.IntakeRecord, 0)
	if err := repo.database.
		Where("patient_id = ? AND is_taken = ?", patientID, true).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *IntakeRecordRepository) FindByPatientAndDate(patientID uint, date string) (models.IntakeRecord, bool, error) {
	record := models.IntakeRecord{}
	result := repo.database.
		Where("patient_id = ? AND date = ?", patientID, date).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return models.IntakeRecord{}, false, result.Error
	}
	return record, result.RowsAffected > 0, nil
}

// CreateIfAbsent inserts record unless (patient_id, date) is already taken.
// It reports false without error when the row already existed.
func (repo *IntakeRecordRepository) CreateIfAbsent(record *models.IntakeRecord) (bool, error) {
	result := repo.database.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// PromoteToTaken flips a pending record to taken. It reports false when the
// record is missing or already taken.
func (repo *IntakeRecordRepository) PromoteToTaken(record *models.IntakeRecord) (bool, error) {
	result := repo.database.Model(&models.IntakeRecord{}).
		Where("id = ? AND is_taken = ?", record.ID, false).
		Updates(map[string]any{
			"is_taken":        true,
			"medication_name": record.MedicationName,
			"dosage":          record.Dosage,
			"frequency":       record.Frequency,
			"description":     record.Description,
			"proof_photo_url": record.ProofPhotoURL,
			"taken_at":        record.TakenAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeletePending removes the pending record for the date and reports whether a
// row was removed. Taken records are never deleted.
func (repo *IntakeRecordRepository) DeletePending(patientID uint, date string) (bool, error) {
	result := repo.database.
		Where("patient_id = ? AND date = ? AND is_taken = ?", patientID, date, false).
		Delete(&models.IntakeRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
