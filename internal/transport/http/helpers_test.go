package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"college-quiz-service/internal/app"
	"college-quiz-service/internal/domain"
	"college-quiz-service/internal/infra/memory"
)

var (
	csA1 = domain.Student{ID: "cs-a-1", Department: "CS", Year: 1, Section: "A", AdmissionNumber: "CS2025-001"}
	eeA1 = domain.Student{ID: "ee-a-1", Department: "EE", Year: 1, Section: "A", AdmissionNumber: "EE2025-001"}
)

type testServer struct {
	*httptest.Server
	submissions *memory.SubmissionStore
	store       *memory.QuizStore
}

// newTestServer wires the REST and websocket handlers over in-memory adapters.
func newTestServer(t *testing.T, now func() time.Time, quizzes ...domain.Quiz) *testServer {
	t.Helper()
	store := memory.NewQuizStore(quizzes...)
	repo := memory.NewQuizRepository(store, time.Minute)
	subs := memory.NewSubmissionStore()
	roster := memory.NewRoster(csA1, eeA1)

	attempts := app.NewAttemptService(repo, subs, app.AttemptConfig{EvaluateOnSubmit: true, Now: now})
	quizService := app.NewQuizServiceWithClock(store, repo, subs, roster, now)
	principals := NewPrincipalResolver(roster)

	mux := http.NewServeMux()
	NewAPIHandler(quizService, attempts, principals).Register(mux)
	ws := NewWSHandler(attempts, principals)
	ws.now = now
	mux.HandleFunc("GET /ws", ws.ServeWS)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, submissions: subs, store: store}
}

func quizAt(start time.Time, window time.Duration, minutes int) domain.Quiz {
	return domain.Quiz{
		ID:            "quiz-1",
		Title:         "Data Structures Quiz",
		AllowedGroups: []domain.Group{{Department: "CS", Year: 1, Section: "A"}},
		StartTime:     start,
		EndTime:       start.Add(window),
		Duration:      minutes,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "Stack order?", Options: []string{"LIFO", "FIFO", "random", "sorted"}, CorrectAnswerIndex: 0, Marks: 4},
			{ID: "q2", Prompt: "Queue order?", Options: []string{"LIFO", "FIFO", "random", "sorted"}, CorrectAnswerIndex: 1, Marks: 6},
		},
	}
}

func studentHeaders(id string) http.Header {
	h := http.Header{}
	h.Set(headerUserID, id)
	h.Set(headerRole, "student")
	return h
}

func staffHeaders(id, role string) http.Header {
	h := http.Header{}
	h.Set(headerUserID, id)
	h.Set(headerRole, role)
	return h
}

func doJSON(t *testing.T, srv *testServer, method, path string, headers http.Header, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func intPtr(v int) *int { return &v }

// clock is a settable server clock shared between the test and the handlers.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(at time.Time) *clock { return &clock{now: at} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
