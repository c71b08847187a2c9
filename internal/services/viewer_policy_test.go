package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/medtrack/internal/models"
)

func TestAuthorizePatientView(t *testing.T) {
	links := &stubLinkRepo{links: []models.CaretakerLink{{CaretakerID: 10, PatientID: 1}}}

	patient := &models.User{ID: 1, Role: models.RolePatient}
	otherPatient := &models.User{ID: 2, Role: models.RolePatient}
	linkedCaretaker := &models.User{ID: 10, Role: models.RoleCaretaker}
	unlinkedCaretaker := &models.User{ID: 11, Role: models.RoleCaretaker}

	tests := []struct {
		name   string
		viewer *models.User
		want   error
	}{
		{name: "patient views self", viewer: patient},
		{name: "linked caretaker", viewer: linkedCaretaker},
		{name: "anonymous", viewer: nil, want: ErrNotAuthenticated},
		{name: "other patient", viewer: otherPatient, want: ErrNotFound},
		{name: "unlinked caretaker", viewer: unlinkedCaretaker, want: ErrNotFound},
		{name: "unknown role", viewer: &models.User{ID: 1, Role: "admin"}, want: ErrForbidden},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := AuthorizePatientView(testCase.viewer, 1, links)
			if testCase.want == nil {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
}

func TestAuthorizePatientViewLinkLookupFailure(t *testing.T) {
	links := &stubLinkRepo{failOn: true}
	caretaker := &models.User{ID: 10, Role: models.RoleCaretaker}
	if err := AuthorizePatientView(caretaker, 1, links); !errors.Is(err, ErrLinkLoadFailed) {
		t.Fatalf("expected link load failure, got %v", err)
	}
}
