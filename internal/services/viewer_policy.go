package services

import "github.com/terraincognita07/medtrack/internal/models"

func IsPatientUser(user *models.User) bool {
	return user != nil && user.Role == models.RolePatient
}

func IsCaretakerUser(user *models.User) bool {
	return user != nil && user.Role == models.RoleCaretaker
}

type LinkChecker interface {
	Exists(caretakerID uint, patientID uint) (bool, error)
}

// AuthorizePatientView allows a patient to see their own data and a caretaker
// to see linked patients. Any other pairing reports ErrPatientNotFound so the
// existence of unrelated patients is not revealed.
func AuthorizePatientView(viewer *models.User, patientID uint, links LinkChecker) error {
	switch {
	case viewer == nil:
		return ErrNotAuthenticated
	case IsPatientUser(viewer):
		if viewer.ID == patientID {
			return nil
		}
		return ErrPatientNotFound
	case IsCaretakerUser(viewer):
		linked, err := links.Exists(viewer.ID, patientID)
		if err != nil {
			return ErrLinkLoadFailed
		}
		if !linked {
			return ErrPatientNotFound
		}
		return nil
	default:
		return ErrForbidden
	}
}
