package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vocab-sprint/internal/auth"
	"vocab-sprint/internal/domain"
)

var errBadRequest = errors.New("malformed request")

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorPayload{Message: messageFor(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrEmptyAnswer),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrRoundOver),
		errors.Is(err, domain.ErrRoundInProgress),
		errors.Is(err, domain.ErrSubmissionInFlight),
		errors.Is(err, domain.ErrAlreadyScored),
		errors.Is(err, domain.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword):
		return auth.Message(err)
	case errors.Is(err, domain.ErrEmptyAnswer):
		return "Please paste your text or upload an image!"
	case errors.Is(err, domain.ErrAnalysisFailed):
		return "Analysis failed. Please try again."
	case statusFor(err) == http.StatusInternalServerError:
		return "An error occurred. Please try again."
	}
	return err.Error()
}
