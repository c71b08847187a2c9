package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/storage"
)

const (
	IntakeActionTaken     = "taken"
	IntakeActionScheduled = "scheduled"
	IntakeActionRemoved   = "removed"
)

type IntakeRecordRepository interface {
	ListByPatient(patientID uint) ([]models.IntakeRecord, error)
	ListTakenByPatient(patientID uint) ([]models.IntakeRecord, error)
	FindByPatientAndDate(patientID uint, date string) (models.IntakeRecord, bool, error)
	CreateIfAbsent(record *models.IntakeRecord) (bool, error)
	PromoteToTaken(record *models.IntakeRecord) (bool, error)
	DeletePending(patientID uint, date string) (bool, error)
}

type ProofPhotoStore interface {
	Upload(ctx context.Context, ownerID uint, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, photoURL string) error
}

// IntakeChangeNotifier receives a signal after every committed intake write.
// Implementations must not block.
type IntakeChangeNotifier interface {
	NotifyIntakeChanged(ctx context.Context, patientID uint, date string, isTaken bool)
}

type IntakeMetrics interface {
	IntakeRecorded(ctx context.Context, action string, withPhoto bool)
	PhotoUploadFailed(ctx context.Context)
}

type IntakeInput struct {
	MedicationName string
	Dosage         string
	Frequency      string
	Description    string
}

type ProofPhoto struct {
	ContentType string
	Data        []byte
}

type IntakeServiceOptions struct {
	Notifier      IntakeChangeNotifier
	Metrics       IntakeMetrics
	AllowBackfill bool
	Now           func() time.Time
}

type IntakeService struct {
	records       IntakeRecordRepository
	photos        ProofPhotoStore
	notifier      IntakeChangeNotifier
	metrics       IntakeMetrics
	location      *time.Location
	allowBackfill bool
	now           func() time.Time
}

func NewIntakeService(records IntakeRecordRepository, photos ProofPhotoStore, location *time.Location, options IntakeServiceOptions) *IntakeService {
	if location == nil {
		location = time.UTC
	}
	service := &IntakeService{
		records:       records,
		photos:        photos,
		notifier:      options.Notifier,
		metrics:       options.Metrics,
		location:      location,
		allowBackfill: options.AllowBackfill,
		now:           options.Now,
	}
	if service.notifier == nil {
		service.notifier = noopIntakeNotifier{}
	}
	if service.metrics == nil {
		service.metrics = noopIntakeMetrics{}
	}
	if service.now == nil {
		service.now = time.Now
	}
	return service
}

func (service *IntakeService) FetchRecords(patientID uint) ([]models.IntakeRecord, error) {
	records, err := service.records.ListByPatient(patientID)
	if err != nil {
		return nil, ErrIntakeLoadFailed
	}
	return records, nil
}

func (service *IntakeService) FetchTakenRecords(patientID uint) ([]models.IntakeRecord, error) {
	records, err := service.records.ListTakenByPatient(patientID)
	if err != nil {
		return nil, ErrIntakeLoadFailed
	}
	return records, nil
}

// MarkTaken records intake for date. A pending entry for the date is
// promoted; a taken one is immutable. The proof photo, when given, is stored
// before anything is written and removed again if the write fails. A photo
// the store refuses, empty ones included, fails the whole call.
func (service *IntakeService) MarkTaken(ctx context.Context, patientID uint, rawDate string, input IntakeInput, photo *ProofPhoto) (models.IntakeRecord, error) {
	date, err := service.takenDate(rawDate)
	if err != nil {
		return models.IntakeRecord{}, err
	}

	existing, found, err := service.records.FindByPatientAndDate(patientID, date)
	if err != nil {
		return models.IntakeRecord{}, ErrIntakeLoadFailed
	}
	if found && existing.IsTaken {
		return models.IntakeRecord{}, ErrIntakeAlreadyTaken
	}

	photoURL := ""
	if photo != nil {
		photoURL, err = service.photos.Upload(ctx, patientID, photo.ContentType, photo.Data)
		if err != nil {
			service.metrics.PhotoUploadFailed(ctx)
			if errors.Is(err, storage.ErrPhotoRejected) {
				return models.IntakeRecord{}, ErrProofPhotoRejected
			}
			return models.IntakeRecord{}, ErrProofPhotoStoreFail
		}
	}

	takenAt := service.now().In(service.location)
	record := models.IntakeRecord{
		PatientID:     patientID,
		Date:          date,
		IsTaken:       true,
		ProofPhotoURL: photoURL,
		TakenAt:       &takenAt,
	}
	applyIntakeInput(&record, input)

	var saved bool
	if found {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		fillMissingIntakeDetails(&record, existing)
		saved, err = service.records.PromoteToTaken(&record)
	} else {
		saved, err = service.records.CreateIfAbsent(&record)
	}
	if err != nil || !saved {
		service.discardPhoto(ctx, photoURL)
		if err != nil {
			return models.IntakeRecord{}, ErrIntakeSaveFailed
		}
		return models.IntakeRecord{}, ErrIntakeAlreadyTaken
	}

	service.metrics.IntakeRecorded(ctx, IntakeActionTaken, photoURL != "")
	service.notifier.NotifyIntakeChanged(ctx, patientID, date, true)
	return record, nil
}

// Schedule creates a pending entry for today or a future date.
func (service *IntakeService) Schedule(ctx context.Context, patientID uint, rawDate string, input IntakeInput) (models.IntakeRecord, error) {
	day, err := ParseDateKey(rawDate, service.location)
	if err != nil {
		return models.IntakeRecord{}, err
	}
	today := DateAtLocation(service.now(), service.location)
	if day.Before(today) {
		return models.IntakeRecord{}, ErrPastScheduleDate
	}

	record := models.IntakeRecord{
		PatientID: patientID,
		Date:      day.Format(models.DateLayout),
	}
	applyIntakeInput(&record, input)

	created, err := service.records.CreateIfAbsent(&record)
	if err != nil {
		return models.IntakeRecord{}, ErrIntakeSaveFailed
	}
	if !created {
		return models.IntakeRecord{}, ErrIntakeEntryExists
	}

	service.metrics.IntakeRecorded(ctx, IntakeActionScheduled, false)
	service.notifier.NotifyIntakeChanged(ctx, patientID, record.Date, false)
	return record, nil
}

// RemovePending deletes a not-yet-taken entry. Taken entries are refused.
func (service *IntakeService) RemovePending(ctx context.Context, patientID uint, rawDate string) error {
	day, err := ParseDateKey(rawDate, service.location)
	if err != nil {
		return err
	}
	date := day.Format(models.DateLayout)

	existing, found, err := service.records.FindByPatientAndDate(patientID, date)
	if err != nil {
		return ErrIntakeLoadFailed
	}
	if !found {
		return ErrIntakeNotFound
	}
	if existing.IsTaken {
		return ErrIntakeAlreadyTaken
	}

	deleted, err := service.records.DeletePending(patientID, date)
	if err != nil {
		return ErrIntakeSaveFailed
	}
	if !deleted {
		return ErrIntakeAlreadyTaken
	}

	service.metrics.IntakeRecorded(ctx, IntakeActionRemoved, false)
	service.notifier.NotifyIntakeChanged(ctx, patientID, date, false)
	return nil
}

// takenDate validates the date a patient may mark as taken: never in the
// future, and in the past only when backfill is enabled.
func (service *IntakeService) takenDate(rawDate string) (string, error) {
	day, err := ParseDateKey(rawDate, service.location)
	if err != nil {
		return "", err
	}
	today := DateAtLocation(service.now(), service.location)
	if day.After(today) {
		return "", ErrFutureIntakeDate
	}
	if day.Before(today) && !service.allowBackfill {
		return "", ErrBackfillNotAllowed
	}
	return day.Format(models.DateLayout), nil
}

func (service *IntakeService) discardPhoto(ctx context.Context, photoURL string) {
	if photoURL == "" {
		return
	}
	_ = service.photos.Delete(ctx, photoURL)
}

func applyIntakeInput(record *models.IntakeRecord, input IntakeInput) {
	record.MedicationName = strings.TrimSpace(input.MedicationName)
	record.Dosage = strings.TrimSpace(input.Dosage)
	record.Frequency = strings.TrimSpace(input.Frequency)
	record.Description = strings.TrimSpace(input.Description)
}

func fillMissingIntakeDetails(record *models.IntakeRecord, scheduled models.IntakeRecord) {
	if record.MedicationName == "" {
		record.MedicationName = scheduled.MedicationName
	}
	if record.Dosage == "" {
		record.Dosage = scheduled.Dosage
	}
	if record.Frequency == "" {
		record.Frequency = scheduled.Frequency
	}
	if record.Description == "" {
		record.Description = scheduled.Description
	}
}

type noopIntakeNotifier struct{}

func (noopIntakeNotifier) NotifyIntakeChanged(context.Context, uint, string, bool) {}

type noopIntakeMetrics struct{}

func (noopIntakeMetrics) IntakeRecorded(context.Context, string, bool) {}

func (noopIntakeMetrics) PhotoUploadFailed(context.Context) {}
