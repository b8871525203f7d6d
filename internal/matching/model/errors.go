package model

import "github.com/festy23/teammatch/pkg/apperror"

var (
	// ErrProfileRequired indicates that the caller has no profile to match from.
	ErrProfileRequired = apperror.New(apperror.PreconditionFailed, "PROFILE_REQUIRED", "create a profile to get suggestions")
	// ErrInvalidExperienceLevel indicates an unknown experience filter.
	ErrInvalidExperienceLevel = apperror.New(apperror.Validation, "INVALID_EXPERIENCE_LEVEL", "experience must be beginner, intermediate or senior")
	// ErrInvalidRating indicates a rating outside 1..5.
	ErrInvalidRating = apperror.New(apperror.Validation, "INVALID_RATING", "rating must be between 1 and 5")
	// ErrSelfMatch indicates a user rating or analysing themselves.
	ErrSelfMatch = apperror.New(apperror.InvalidOperation, "SELF_MATCH", "cannot match a user with themselves")
)
