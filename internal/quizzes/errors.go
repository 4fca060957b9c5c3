package quizzes

import "errors"

// Business errors surfaced by the engine. Handlers map these to HTTP
// statuses; anything else is a persistence failure and stays internal.
var (
	// ErrInvalidRequest marks malformed or missing input. Rejected before
	// any store access.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAlreadyPassed marks a submission for a quiz the user already passed.
	ErrAlreadyPassed = errors.New("quiz already passed")
	// ErrNoAttemptsRemaining marks a submission past the attempt cap.
	ErrNoAttemptsRemaining = errors.New("no attempts remaining")
	// ErrNotFound marks a missing quiz, question, or certificate chain link.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateQuiz marks a quiz creation for a material that already has one.
	ErrDuplicateQuiz = errors.New("quiz already exists for material")
)
