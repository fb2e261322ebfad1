package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error taxonomy shared by every workflow. Handlers map these to HTTP status codes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("invalid request")
	ErrTransient    = errors.New("store unavailable")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrNoCurrentSponsor    = fmt.Errorf("%w: user does not have a current sponsor", ErrForbidden)
	ErrNoHackathon         = fmt.Errorf("%w: user does not administer a hackathon", ErrForbidden)
	ErrNotListingSponsor   = fmt.Errorf("%w: listing belongs to another sponsor", ErrForbidden)
	ErrListingNotFound     = fmt.Errorf("%w: listing", ErrNotFound)
	ErrHackathonNotFound   = fmt.Errorf("%w: hackathon", ErrNotFound)
	ErrSubmissionNotFound  = fmt.Errorf("%w: submission", ErrNotFound)
	ErrTitleRequired       = fmt.Errorf("%w: title is required", ErrValidation)
	ErrInvalidListingType  = fmt.Errorf("%w: unknown listing type", ErrValidation)
	ErrHackathonSponsorReq = fmt.Errorf("%w: hackathonSponsor is required for hackathon listings", ErrValidation)
	ErrUnknownSponsor      = fmt.Errorf("%w: hackathonSponsor does not exist", ErrValidation)
)

// storeError classifies a repository error: missing rows become notFound,
// references to rows that do not exist are invalid input, and everything
// else is a retryable store failure.
func storeError(op string, err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %s: referenced record does not exist", ErrValidation, op)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}
