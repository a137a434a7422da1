package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDifficulty is returned for a tier outside easy/medium/hard.
	ErrInvalidDifficulty = errors.New("difficulty must be easy, medium or hard")
	// ErrEmptyAnswer is returned when neither text nor an image was submitted.
	ErrEmptyAnswer = errors.New("answer text or image is required")
	// ErrInvalidImage indicates the attachment is not an image.
	ErrInvalidImage = errors.New("attachment must be an image")
	// ErrAnalysisFailed is returned when the scoring service call or its response failed.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrResponseShape indicates the scoring response did not match the expected structure.
	ErrResponseShape = fmt.Errorf("%w: unexpected response shape", ErrAnalysisFailed)

	// ErrSessionNotFound is returned when a play session does not exist for the caller.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRoundOver is returned when skipping after the round has finished.
	ErrRoundOver = errors.New("round is over")
	// ErrRoundInProgress is returned when submitting before the round has finished.
	ErrRoundInProgress = errors.New("round still in progress")
	// ErrSubmissionInFlight is returned while an earlier submission is being analysed.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrAlreadyScored is returned when a session already holds a result.
	ErrAlreadyScored = errors.New("session already scored")
	// ErrSessionClosed is returned when the session was torn down mid-operation.
	ErrSessionClosed = errors.New("session closed")

	// ErrUnauthenticated is returned when no valid user accompanies a request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is returned for a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when signing in to an unknown account.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password too short")
)
