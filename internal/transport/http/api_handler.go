package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"college-quiz-service/internal/app"
	"college-quiz-service/internal/domain"
)

// APIHandler exposes the quiz and attempt use cases as JSON over HTTP.
type APIHandler struct {
	quizzes    *app.QuizService
	attempts   *app.AttemptService
	principals *PrincipalResolver
}

func NewAPIHandler(quizzes *app.QuizService, attempts *app.AttemptService, principals *PrincipalResolver) *APIHandler {
	return &APIHandler{quizzes: quizzes, attempts: attempts, principals: principals}
}

// Register mounts the REST routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /dashboard", h.withPrincipal(h.dashboard))
	mux.HandleFunc("GET /quizzes", h.withPrincipal(h.listQuizzes))
	mux.HandleFunc("POST /quizzes", h.withPrincipal(h.createQuiz))
	mux.HandleFunc("GET /quizzes/{id}", h.withPrincipal(h.getQuiz))
	mux.HandleFunc("DELETE /quizzes/{id}", h.withPrincipal(h.deleteQuiz))
	mux.HandleFunc("GET /quizzes/{id}/statistics", h.withPrincipal(h.statistics))
	mux.HandleFunc("POST /quizzes/{id}/start", h.withPrincipal(h.start))
	mux.HandleFunc("GET /quizzes/{id}/submission", h.withPrincipal(h.submission))
	mux.HandleFunc("PUT /quizzes/{id}/answers", h.withPrincipal(h.answer))
	mux.HandleFunc("POST /quizzes/{id}/submit", h.withPrincipal(h.submit))
}

type principalHandler func(w http.ResponseWriter, r *http.Request, p domain.Principal)

func (h *APIHandler) withPrincipal(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.principals.Resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r, p)
	}
}

func (h *APIHandler) dashboard(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	d, err := h.quizzes.Dashboard(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	views, err := h.quizzes.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *APIHandler) createQuiz(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var quiz domain.Quiz
	if err := decodeBody(r, &quiz); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.quizzes.Create(r.Context(), p, quiz)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *APIHandler) getQuiz(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	view, err := h.quizzes.Get(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) deleteQuiz(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	if err := h.quizzes.Delete(r.Context(), p, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) statistics(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	stats, err := h.quizzes.Statistics(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) start(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	sub, err := h.attempts.Start(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *APIHandler) submission(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	sub, err := h.attempts.Submission(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type answerRequest struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption"`
}

func (h *APIHandler) answer(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.QuestionID == "" {
		writeError(w, r, fmt.Errorf("%w: questionId is required", errBadRequest))
		return
	}
	sub, err := h.attempts.UpdateAnswer(r.Context(), p, r.PathValue("id"), req.QuestionID, req.SelectedOption)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *APIHandler) submit(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	sub, err := h.attempts.Submit(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
