package services

import (
	"time"

	"github.com/terraincognita07/medtrack/internal/models"
)

type LinkUserRepository interface {
	FindByNormalizedEmail(email string) (models.User, bool, error)
	ListByIDs(userIDs []uint) ([]models.User, error)
}

type CaretakerLinkRepository interface {
	ListByCaretaker(caretakerID uint) ([]models.CaretakerLink, error)
	Exists(caretakerID uint, patientID uint) (bool, error)
	CreateIfAbsent(link *models.CaretakerLink) (bool, error)
}

type LinkService struct {
	users LinkUserRepository
	links CaretakerLinkRepository
	now   func() time.Time
}

func NewLinkService(users LinkUserRepository, links CaretakerLinkRepository) *LinkService {
	return &LinkService{users: users, links: links, now: time.Now}
}

// ResolvePatientByEmail finds the patient account a caretaker wants to link.
func (service *LinkService) ResolvePatientByEmail(emailRaw string) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrPatientEmailRequired
	}

	profile, found, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, ErrProfileLoad
	}
	if !found {
		return models.User{}, ErrProfileNotFound
	}
	if profile.Role != models.RolePatient {
		return models.User{}, ErrNotAPatient
	}
	return profile, nil
}

func (service *LinkService) LinkByEmail(caretaker *models.User, emailRaw string) (models.CaretakerLink, error) {
	if caretaker == nil {
		return models.CaretakerLink{}, ErrNotAuthenticated
	}
	if !IsCaretakerUser(caretaker) {
		return models.CaretakerLink{}, ErrCaretakerOnly
	}

	patient, err := service.ResolvePatientByEmail(emailRaw)
	if err != nil {
		return models.CaretakerLink{}, err
	}

	link := models.CaretakerLink{
		CaretakerID: caretaker.ID,
		PatientID:   patient.ID,
		CreatedAt:   service.now().UTC(),
	}
	created, err := service.links.CreateIfAbsent(&link)
	if err != nil {
		return models.CaretakerLink{}, ErrLinkSaveFailed
	}
	if !created {
		return models.CaretakerLink{}, ErrLinkExists
	}
	return link, nil
}

func (service *LinkService) Roster(caretakerID uint) ([]RosterEntry, error) {
	links, err := service.links.ListByCaretaker(caretakerID)
	if err != nil {
		return nil, ErrLinkLoadFailed
	}

	patientIDs := make([]uint, 0, len(links))
	for _, link := range links {
		patientIDs = append(patientIDs, link.PatientID)
	}
	profiles, err := service.users.ListByIDs(patientIDs)
	if err != nil {
		return nil, ErrProfileLoad
	}
	return ComputeLinkedPatientRoster(links, profiles), nil
}

func (service *LinkService) Exists(caretakerID uint, patientID uint) (bool, error) {
	return service.links.Exists(caretakerID, patientID)
}
