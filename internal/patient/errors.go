package patient

import "errors"

var (
	ErrMissingName     = errors.New("patient name is required")
	ErrInvalidStatus   = errors.New("invalid patient status")
	ErrPatientNotFound = errors.New("patient not found")
)
