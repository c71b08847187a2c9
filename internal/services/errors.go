package services

import (
	"errors"
	"fmt"
)

// Failure categories. Operation errors wrap one of these so callers can
// classify them with errors.Is.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUploadFailed     = errors.New("upload failed")
	ErrMalformedInput   = errors.New("malformed input")
	ErrForbidden        = errors.New("forbidden")
)

var (
	ErrInvalidIntakeDate   = fmt.Errorf("%w: invalid intake date", ErrMalformedInput)
	ErrInvalidMonth        = fmt.Errorf("%w: invalid month", ErrMalformedInput)
	ErrFutureIntakeDate    = fmt.Errorf("%w: intake date is in the future", ErrMalformedInput)
	ErrBackfillNotAllowed  = fmt.Errorf("%w: intake can only be marked for today", ErrMalformedInput)
	ErrPastScheduleDate    = fmt.Errorf("%w: schedule date is in the past", ErrMalformedInput)
	ErrIntakeAlreadyTaken  = fmt.Errorf("%w: intake already recorded for date", ErrAlreadyExists)
	ErrIntakeEntryExists   = fmt.Errorf("%w: intake entry already exists for date", ErrAlreadyExists)
	ErrIntakeNotFound      = fmt.Errorf("%w: intake entry", ErrNotFound)
	ErrProofPhotoRejected  = fmt.Errorf("%w: proof photo rejected", ErrMalformedInput)
	ErrProofPhotoStoreFail = fmt.Errorf("%w: proof photo", ErrUploadFailed)

	ErrProfileNotFound      = fmt.Errorf("%w: no account with that email", ErrNotFound)
	ErrPatientEmailRequired = fmt.Errorf("%w: a valid patient email is required", ErrMalformedInput)
	ErrNotAPatient          = fmt.Errorf("%w: account is not a patient", ErrMalformedInput)
	ErrLinkExists           = fmt.Errorf("%w: patient already linked", ErrAlreadyExists)
	ErrPatientNotFound      = fmt.Errorf("%w: patient", ErrNotFound)
	ErrCaretakerOnly        = fmt.Errorf("%w: caretaker role required", ErrForbidden)
	ErrPatientOnly          = fmt.Errorf("%w: patient role required", ErrForbidden)
)

var (
	ErrIntakeLoadFailed = errors.New("load intake records failed")
	ErrIntakeSaveFailed = errors.New("save intake record failed")
	ErrLinkLoadFailed   = errors.New("load caretaker links failed")
	ErrLinkSaveFailed   = errors.New("save caretaker link failed")
	ErrProfileLoad      = errors.New("load profile failed")
)
