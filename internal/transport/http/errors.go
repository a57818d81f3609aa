package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"college-quiz-service/internal/domain"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string              `json:"kind"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func statusFor(kind string) int {
	switch kind {
	case "NotFound":
		return http.StatusNotFound
	case "NotEligible", "Forbidden":
		return http.StatusForbidden
	case "WindowClosed", "DuplicateAttempt", "AlreadySubmitted", "NotSubmitted", "QuizLocked", "Conflict":
		return http.StatusConflict
	case "InvalidAnswerIndex", "MalformedQuiz":
		return http.StatusUnprocessableEntity
	case "BadRequest":
		return http.StatusBadRequest
	case "Unauthenticated":
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// errorKind extends domain.Kind with the transport-only failures.
func errorKind(err error) string {
	switch {
	case errors.Is(err, errUnauthenticated):
		return "Unauthenticated"
	case errors.Is(err, errBadRequest):
		return "BadRequest"
	}
	return domain.Kind(err)
}

func newErrorDetail(err error) errorDetail {
	kind := errorKind(err)
	detail := errorDetail{Kind: kind, Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		detail.Fields = verr.Fields
	}
	if kind == "Internal" {
		detail.Message = "internal error"
	}
	return detail
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	detail := newErrorDetail(err)
	status := statusFor(detail.Kind)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
