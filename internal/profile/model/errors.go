package model

import "github.com/festy23/teammatch/pkg/apperror"

var (
	// ErrProfileNotFound indicates that the user has no profile.
	ErrProfileNotFound = apperror.New(apperror.NotFound, "PROFILE_NOT_FOUND", "profile not found")
	// ErrInvalidExperience indicates a negative experience duration.
	ErrInvalidExperience = apperror.New(apperror.Validation, "INVALID_EXPERIENCE", "experience duration must not be negative")
)
