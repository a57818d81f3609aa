package app_test

import (
	"context"
	"sync"
	"time"

	"college-quiz-service/internal/app"
	"college-quiz-service/internal/domain"
	"college-quiz-service/internal/infra/memory"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable server clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fixture struct {
	clock       *fakeClock
	store       *memory.QuizStore
	submissions *memory.SubmissionStore
	roster      *memory.Roster
	repo        app.QuizRepository
	attempts    *app.AttemptService
	quizzes     *app.QuizService
}

func newFixture(evaluateOnSubmit bool) *fixture {
	clock := &fakeClock{now: t0}
	store := memory.NewQuizStore(scenarioQuiz())
	repo := memory.NewQuizRepository(store, time.Minute)
	subs := memory.NewSubmissionStore()
	roster := memory.NewRoster(
		csA1, csA2, csB1,
		domain.Student{ID: "ee-1", Department: "EE", Year: 2, Section: "A", AdmissionNumber: "EE2024-001"},
	)
	return &fixture{
		clock:       clock,
		store:       store,
		submissions: subs,
		roster:      roster,
		repo:        repo,
		attempts:    app.NewAttemptService(repo, subs, app.AttemptConfig{EvaluateOnSubmit: evaluateOnSubmit, Now: clock.Now}),
		quizzes:     app.NewQuizServiceWithClock(store, repo, subs, roster, clock.Now),
	}
}

// attemptsOver builds an attempt service sharing the fixture's quizzes and
// clock but writing through subs.
func (f *fixture) attemptsOver(subs app.SubmissionRepository, evaluateOnSubmit bool) *app.AttemptService {
	return app.NewAttemptService(f.repo, subs, app.AttemptConfig{EvaluateOnSubmit: evaluateOnSubmit, Now: f.clock.Now})
}

// hookedSubmissions runs a one-shot hook right after the next Get or
// ListByStatus returns, so tests can slip a write between a read and the
// write that depends on it.
type hookedSubmissions struct {
	app.SubmissionRepository
	mu        sync.Mutex
	afterGet  func()
	afterList func()
}

func (s *hookedSubmissions) Get(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	sub, err := s.SubmissionRepository.Get(ctx, quizID, studentID)
	s.fire(&s.afterGet)
	return sub, err
}

func (s *hookedSubmissions) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Submission, error) {
	subs, err := s.SubmissionRepository.ListByStatus(ctx, status)
	s.fire(&s.afterList)
	return subs, err
}

func (s *hookedSubmissions) fire(slot *func()) {
	s.mu.Lock()
	hook := *slot
	*slot = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

var (
	csA1 = domain.Student{ID: "cs-a-1", Department: "CS", Year: 1, Section: "A", AdmissionNumber: "CS2025-001"}
	csA2 = domain.Student{ID: "cs-a-2", Department: "CS", Year: 1, Section: "A", AdmissionNumber: "CS2025-002"}
	csB1 = domain.Student{ID: "cs-b-1", Department: "CS", Year: 1, Section: "B", AdmissionNumber: "CS2025-101"}

	faculty = domain.StaffPrincipal("fac-1", domain.RoleFaculty)
	admin   = domain.StaffPrincipal("adm-1", domain.RoleAdmin)
)

// scenarioQuiz: groups [{CS,1,A}], duration 30m, window [T, T+60m], 10 marks.
func scenarioQuiz() domain.Quiz {
	return domain.Quiz{
		ID:            "quiz-1",
		Title:         "Discrete Maths Quiz 1",
		AllowedGroups: []domain.Group{{Department: "CS", Year: 1, Section: "A"}},
		StartTime:     t0,
		EndTime:       t0.Add(60 * time.Minute),
		Duration:      30,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "Is 7 prime?", Options: []string{"yes", "no", "maybe", "n/a"}, CorrectAnswerIndex: 0, Marks: 5},
			{ID: "q2", Prompt: "2^3?", Options: []string{"6", "8", "9", "5"}, CorrectAnswerIndex: 1, Marks: 3},
			{ID: "q3", Prompt: "|{a,b}|?", Options: []string{"0", "1", "2", "3"}, CorrectAnswerIndex: 2, Marks: 2},
		},
	}
}

func intPtr(v int) *int { return &v }
