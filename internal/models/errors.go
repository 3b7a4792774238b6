package models

import "errors"

// Error kinds surfaced by the services. Handlers map these to HTTP
// statuses with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrAlreadySubmitted  = errors.New("answers already submitted for this exam")
	ErrInvalidScore      = errors.New("score must be between 0 and 100")
	ErrIntegrityConflict = errors.New("integrity conflict, retry the operation")
	ErrInvalidGrade      = errors.New("invalid grade level")
	ErrInvalidQuestion   = errors.New("correct answer must be one of the choices")
	ErrEmptyChoices      = errors.New("question must have at least one choice")
	ErrEmptySubmission   = errors.New("submission contains no answers")
)
