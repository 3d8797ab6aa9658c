package clinic

import "errors"

var (
	ErrMissingName          = errors.New("clinic name is required")
	ErrClinicNotFound       = errors.New("clinic not found")
	ErrPatientQuotaExceeded = errors.New("clinic patient limit reached for the current plan")
	ErrUserQuotaExceeded    = errors.New("clinic user limit reached for the current plan")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
)
