package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
	"gorm.io/gorm"
)

var errStubStorage = errors.New("stub storage failure")

type stubIntakeRepo struct {
	records   []models.IntakeRecord
	nextID    uint
	failWrite bool
	failRead  bool
}

func (repo *stubIntakeRepo) ListByPatient(patientID uint) ([]models.IntakeRecord, error) {
	if repo.failRead {
		return nil, errStubStorage
	}
	result := make([]models.IntakeRecord, 0)
	for _, record := range repo.records {
		if record.PatientID == patientID {
			result = append(result, record)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (repo *stubIntakeRepo) ListTakenByPatient(patientID uint) ([]models.IntakeRecord, error) {
	all, err := repo.ListByPatient(patientID)
	if err != nil {
		return nil, err
	}
	taken := make([]models.IntakeRecord, 0, len(all))
	for _, record := range all {
		if record.IsTaken {
			taken = append(taken, record)
		}
	}
	return taken, nil
}

func (repo *stubIntakeRepo) FindByPatientAndDate(patientID uint, date string) (models.IntakeRecord, bool, error) {
	if repo.failRead {
		return models.IntakeRecord{}, false, errStubStorage
	}
	for _, record := range repo.records {
		if record.PatientID == patientID && record.Date == date {
			return record, true, nil
		}
	}
	return models.IntakeRecord{}, false, nil
}

func (repo *stubIntakeRepo) CreateIfAbsent(record *models.IntakeRecord) (bool, error) {
	if repo.failWrite {
		return false, errStubStorage
	}
	if _, found, _ := repo.FindByPatientAndDate(record.PatientID, record.Date); found {
		return false, nil
	}
	repo.nextID++
	record.ID = repo.nextID
	repo.records = append(repo.records, *record)
	return true, nil
}

func (repo *stubIntakeRepo) PromoteToTaken(record *models.IntakeRecord) (bool, error) {
	if repo.failWrite {
		return false, errStubStorage
	}
	for index := range repo.records {
		if repo.records[index].ID == record.ID && !repo.records[index].IsTaken {
			repo.records[index] = *record
			return true, nil
		}
	}
	return false, nil
}

func (repo *stubIntakeRepo) DeletePending(patientID uint, date string) (bool, error) {
	if repo.failWrite {
		return false, errStubStorage
	}
	for index, record := range repo.records {
		if record.PatientID == patientID && record.Date == date && !record.IsTaken {
			repo.records = append(repo.records[:index], repo.records[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type stubPhotoStore struct {
	uploadErr error
	stored    map[string][]byte
	deleted   []string
	uploads   int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{stored: make(map[string][]byte)}
}

func (store *stubPhotoStore) Upload(_ context.Context, ownerID uint, _ string, data []byte) (string, error) {
	if store.uploadErr != nil {
		return "", store.uploadErr
	}
	store.uploads++
	url := "/api/photos/" + strconv.FormatUint(uint64(ownerID), 10) + "/photo-" + strconv.Itoa(store.uploads) + ".png"
	store.stored[url] = data
	return url, nil
}

func (store *stubPhotoStore) Delete(_ context.Context, photoURL string) error {
	store.deleted = append(store.deleted, photoURL)
	delete(store.stored, photoURL)
	return nil
}

type recordedChange struct {
	PatientID uint
	Date      string
	IsTaken   bool
}

type stubNotifier struct {
	mu      sync.Mutex
	changes []recordedChange
}

func (notifier *stubNotifier) NotifyIntakeChanged(_ context.Context, patientID uint, date string, isTaken bool) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.changes = append(notifier.changes, recordedChange{PatientID: patientID, Date: date, IsTaken: isTaken})
}

type stubIntakeMetrics struct {
	recorded       map[string]int
	withPhoto      int
	uploadFailures int
}

func (metrics *stubIntakeMetrics) IntakeRecorded(_ context.Context, action string, withPhoto bool) {
	if metrics.recorded == nil {
		metrics.recorded = make(map[string]int)
	}
	metrics.recorded[action]++
	if withPhoto {
		metrics.withPhoto++
	}
}

func (metrics *stubIntakeMetrics) PhotoUploadFailed(context.Context) {
	metrics.uploadFailures++
}

type stubUserRepo struct {
	users  []models.User
	failOn bool
}

func (repo *stubUserRepo) ExistsByNormalizedEmail(email string) (bool, error) {
	_, found, err := repo.FindByNormalizedEmail(email)
	return found, err
}

func (repo *stubUserRepo) FindByNormalizedEmail(email string) (models.User, bool, error) {
	if repo.failOn {
		return models.User{}, false, errStubStorage
	}
	for _, user := range repo.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (repo *stubUserRepo) FindByID(userID uint) (models.User, error) {
	for _, user := range repo.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (repo *stubUserRepo) ListByIDs(userIDs []uint) ([]models.User, error) {
	if repo.failOn {
		return nil, errStubStorage
	}
	result := make([]models.User, 0, len(userIDs))
	for _, userID := range userIDs {
		if user, err := repo.FindByID(userID); err == nil {
			result = append(result, user)
		}
	}
	return result, nil
}

func (repo *stubUserRepo) Create(user *models.User) error {
	user.ID = uint(len(repo.users) + 1)
	repo.users = append(repo.users, *user)
	return nil
}

func (repo *stubUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	for index := range repo.users {
		if repo.users[index].ID == userID {
			repo.users[index].PasswordHash = passwordHash
			repo.users[index].MustChangePassword = mustChangePassword
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubLinkRepo struct {
	links  []models.CaretakerLink
	failOn bool
}

func (repo *stubLinkRepo) ListByCaretaker(caretakerID uint) ([]models.CaretakerLink, error) {
	if repo.failOn {
		return nil, errStubStorage
	}
	result := make([]models.CaretakerLink, 0)
	for _, link := range repo.links {
		if link.CaretakerID == caretakerID {
			result = append(result, link)
		}
	}
	return result, nil
}

func (repo *stubLinkRepo) Exists(caretakerID uint, patientID uint) (bool, error) {
	if repo.failOn {
		return false, errStubStorage
	}
	for _, link := range repo.links {
		if link.CaretakerID == caretakerID && link.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *stubLinkRepo) CreateIfAbsent(link *models.CaretakerLink) (bool, error) {
	if repo.failOn {
		return false, errStubStorage
	}
	if exists, _ := repo.Exists(link.CaretakerID, link.PatientID); exists {
		return false, nil
	}
	link.ID = uint(len(repo.links) + 1)
	repo.links = append(repo.links, *link)
	return true, nil
}

func fixedClock(value time.Time) func() time.Time {
	return func() time.Time { return value }
}
