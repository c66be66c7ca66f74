package services

import "errors"

var (
	ErrFormNotFound     = errors.New("form not found")
	ErrFormUnavailable  = errors.New("form is not accepting responses")
	ErrUsageUnavailable = errors.New("usage count unavailable")
	ErrSubmissionFailed = errors.New("failed to submit response")
	ErrForbidden        = errors.New("forbidden")
	ErrFormLimitReached = errors.New("form limit reached")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidInput     = errors.New("invalid input")
)
