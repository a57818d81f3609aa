package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"college-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// AttemptConfig tunes the attempt state machine.
type AttemptConfig struct {
	// EvaluateOnSubmit scores an attempt right after it is submitted. When false,
	// evaluation happens lazily on the first statistics read.
	EvaluateOnSubmit bool
	// Now is the server clock; defaults to time.Now in UTC.
	Now func() time.Time
}

// AttemptService drives one student's attempt through started -> submitted -> evaluated.
type AttemptService struct {
	quizzes          QuizRepository
	submissions      SubmissionRepository
	evaluateOnSubmit bool
	now              func() time.Time
	newID            func() string
}

func NewAttemptService(quizzes QuizRepository, submissions SubmissionRepository, cfg AttemptConfig) *AttemptService {
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AttemptService{
		quizzes:          quizzes,
		submissions:      submissions,
		evaluateOnSubmit: cfg.EvaluateOnSubmit,
		now:              now,
		newID:            uuid.NewString,
	}
}

// Start creates the principal's attempt, or returns the existing one.
func (s *AttemptService) Start(ctx context.Context, p domain.Principal, quizID string) (domain.Submission, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	student, err := p.AttemptingStudent(quiz)
	if err != nil {
		return domain.Submission{}, err
	}

	existing, err := s.submissions.Get(ctx, quiz.ID, student.ID)
	if err == nil {
		return s.reconcile(ctx, quiz, existing)
	}
	if !errors.Is(err, domain.ErrSubmissionNotFound) {
		return domain.Submission{}, err
	}

	now := s.now()
	if state := domain.Classify(quiz, now); state != domain.Active {
		return domain.Submission{}, fmt.Errorf("%w: quiz is %s", domain.ErrWindowClosed, state)
	}

	sub := domain.NewSubmission(s.newID(), quiz.ID, student.ID, now)
	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrDuplicateAttempt) {
			// Lost the race; the first writer's attempt is the attempt.
			return s.submissions.Get(ctx, quiz.ID, student.ID)
		}
		return domain.Submission{}, err
	}
	return sub, nil
}

// UpdateAnswer records or clears the selection for one question.
func (s *AttemptService) UpdateAnswer(ctx context.Context, p domain.Principal, quizID, questionID string, selected *int) (domain.Submission, error) {
	quiz, sub, err := s.load(ctx, p, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	question, ok := quiz.Question(questionID)
	if !ok {
		return domain.Submission{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}
	for attempt := 1; ; attempt++ {
		if sub.Status != domain.StatusStarted {
			return sub, domain.ErrAlreadySubmitted
		}
		now := s.now()
		if domain.DeadlinePassed(quiz, sub, now) {
			finished, err := s.finalize(ctx, quiz, sub, now)
			if err != nil && !errors.Is(err, domain.ErrAlreadySubmitted) {
				return domain.Submission{}, err
			}
			return finished, fmt.Errorf("%w: attempt deadline passed", domain.ErrWindowClosed)
		}

		if err := sub.SetAnswer(question, selected); err != nil {
			return domain.Submission{}, err
		}
		err := s.submissions.Update(ctx, sub, domain.StatusStarted)
		if err == nil {
			sub.Revision++
			return sub, nil
		}
		if !errors.Is(err, domain.ErrStaleSubmission) || attempt == maxWriteAttempts {
			return domain.Submission{}, err
		}
		if sub, err = s.submissions.Get(ctx, quiz.ID, sub.StudentID); err != nil {
			return domain.Submission{}, err
		}
	}
}

// Submit ends the principal's attempt. Past the deadline the submit time is
// clamped to the boundary that was crossed.
func (s *AttemptService) Submit(ctx context.Context, p domain.Principal, quizID string) (domain.Submission, error) {
	quiz, sub, err := s.load(ctx, p, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	if sub.Status != domain.StatusStarted {
		return sub, domain.ErrAlreadySubmitted
	}
	now := s.now()
	if domain.Classify(quiz, now) == domain.Upcoming {
		return domain.Submission{}, fmt.Errorf("%w: quiz is %s", domain.ErrWindowClosed, domain.Upcoming)
	}
	return s.finalize(ctx, quiz, sub, now)
}

// Submission returns the principal's attempt, force-submitting it first if it is overdue.
func (s *AttemptService) Submission(ctx context.Context, p domain.Principal, quizID string) (domain.Submission, error) {
	quiz, sub, err := s.load(ctx, p, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	return s.reconcile(ctx, quiz, sub)
}

// Deadline returns when the principal's running attempt will be force-submitted.
func (s *AttemptService) Deadline(ctx context.Context, quizID string, sub domain.Submission) (time.Time, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return time.Time{}, err
	}
	return domain.Deadline(quiz, sub), nil
}

// Evaluate scores a submitted attempt. Evaluated attempts are returned unchanged.
func (s *AttemptService) Evaluate(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	sub, err := s.submissions.Get(ctx, quizID, studentID)
	if err != nil {
		return domain.Submission{}, err
	}
	return evaluateStored(ctx, s.submissions, quiz, sub, s.now())
}

// SweepExpired force-submits every started attempt whose deadline has passed
// and returns how many were submitted.
func (s *AttemptService) SweepExpired(ctx context.Context) (int, error) {
	started, err := s.submissions.ListByStatus(ctx, domain.StatusStarted)
	if err != nil {
		return 0, err
	}
	now := s.now()
	swept := 0
	for _, sub := range started {
		quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
		if err != nil {
			if errors.Is(err, domain.ErrQuizNotFound) {
				continue
			}
			return swept, err
		}
		if !domain.DeadlinePassed(quiz, sub, now) {
			continue
		}
		if _, err := s.finalize(ctx, quiz, sub, now); err != nil {
			if errors.Is(err, domain.ErrAlreadySubmitted) {
				continue
			}
			return swept, err
		}
		swept++
	}
	return swept, nil
}

func (s *AttemptService) load(ctx context.Context, p domain.Principal, quizID string) (domain.Quiz, domain.Submission, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.Submission{}, err
	}
	student, err := p.AttemptingStudent(quiz)
	if err != nil {
		return domain.Quiz{}, domain.Submission{}, err
	}
	sub, err := s.submissions.Get(ctx, quiz.ID, student.ID)
	if err != nil {
		return domain.Quiz{}, domain.Submission{}, err
	}
	return quiz, sub, nil
}

// reconcile applies the late-bound auto-submit to an overdue attempt on read.
func (s *AttemptService) reconcile(ctx context.Context, quiz domain.Quiz, sub domain.Submission) (domain.Submission, error) {
	now := s.now()
	if sub.Status != domain.StatusStarted || !domain.DeadlinePassed(quiz, sub, now) {
		return sub, nil
	}
	finished, err := s.finalize(ctx, quiz, sub, now)
	if errors.Is(err, domain.ErrAlreadySubmitted) {
		return s.submissions.Get(ctx, sub.QuizID, sub.StudentID)
	}
	return finished, err
}

func (s *AttemptService) finalize(ctx context.Context, quiz domain.Quiz, sub domain.Submission, now time.Time) (domain.Submission, error) {
	submitted, err := submitStored(ctx, s.submissions, quiz, sub, now)
	if err != nil || !s.evaluateOnSubmit {
		return submitted, err
	}
	return evaluateStored(ctx, s.submissions, quiz, submitted, now)
}

// maxWriteAttempts bounds how often a write is retried after losing a
// revision compare-and-set to a concurrent writer.
const maxWriteAttempts = 5

// submitStored freezes a started attempt at the instant SubmitInstant picks.
// When a concurrent answer update bumped the revision, the attempt is re-read
// so the frozen answers include that update.
func submitStored(ctx context.Context, repo SubmissionRepository, quiz domain.Quiz, sub domain.Submission, now time.Time) (domain.Submission, error) {
	for attempt := 1; ; attempt++ {
		if sub.Status != domain.StatusStarted {
			return sub, domain.ErrAlreadySubmitted
		}
		at, reason := domain.SubmitInstant(quiz, sub, now)
		next := sub
		if err := next.Submit(at, reason); err != nil {
			return sub, err
		}
		err := repo.Update(ctx, next, domain.StatusStarted)
		if err == nil {
			next.Revision++
			if reason != domain.EndReasonManual {
				log.Printf("attempt %s (quiz %s, student %s) auto-submitted at %s: %s",
					next.ID, next.QuizID, next.StudentID, at.Format(time.RFC3339), reason)
			}
			return next, nil
		}
		if !errors.Is(err, domain.ErrStaleSubmission) || attempt == maxWriteAttempts {
			return domain.Submission{}, err
		}
		if sub, err = repo.Get(ctx, sub.QuizID, sub.StudentID); err != nil {
			return domain.Submission{}, err
		}
	}
}

// evaluateStored scores a submitted attempt and persists the result with a
// compare-and-set, so concurrent evaluators converge on one result.
func evaluateStored(ctx context.Context, repo SubmissionRepository, quiz domain.Quiz, sub domain.Submission, now time.Time) (domain.Submission, error) {
	for attempt := 1; ; attempt++ {
		switch sub.Status {
		case domain.StatusEvaluated:
			return sub, nil
		case domain.StatusStarted:
			return sub, domain.ErrNotSubmitted
		}
		next := sub.Clone()
		if err := next.ApplyEvaluation(domain.Evaluate(quiz, sub.Answers), now); err != nil {
			return sub, err
		}
		err := repo.Update(ctx, next, domain.StatusSubmitted)
		if err == nil {
			next.Revision++
			return next, nil
		}
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			return repo.Get(ctx, sub.QuizID, sub.StudentID)
		}
		if !errors.Is(err, domain.ErrStaleSubmission) || attempt == maxWriteAttempts {
			return domain.Submission{}, err
		}
		if sub, err = repo.Get(ctx, sub.QuizID, sub.StudentID); err != nil {
			return domain.Submission{}, err
		}
	}
}
