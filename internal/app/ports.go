package app

import (
	"context"

	"college-quiz-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// Invalidate drops any cached copy after the quiz was replaced or deleted.
	Invalidate(ctx context.Context, quizID string) error
}

// QuizStore is the authoritative quiz collection written by authors.
type QuizStore interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// SubmissionRepository persists attempts keyed uniquely by (quizID, studentID).
type SubmissionRepository interface {
	// Create inserts a new submission. If one already exists for the key it
	// returns domain.ErrDuplicateAttempt and leaves the stored one untouched.
	Create(ctx context.Context, sub domain.Submission) error
	// Get returns domain.ErrSubmissionNotFound when there is no attempt.
	Get(ctx context.Context, quizID, studentID string) (domain.Submission, error)
	// Update replaces the stored submission only if its status is still
	// expected (else domain.ErrAlreadySubmitted) and its revision still equals
	// sub.Revision (else domain.ErrStaleSubmission). A successful write stores
	// sub.Revision+1.
	Update(ctx context.Context, sub domain.Submission, expected domain.Status) error
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Submission, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Submission, error)
	CountByQuiz(ctx context.Context, quizID string) (int, error)
	DeleteByQuiz(ctx context.Context, quizID string) error
}

// Roster resolves students; it is owned by the identity service and read-only here.
type Roster interface {
	GetStudent(ctx context.Context, studentID string) (domain.Student, error)
	// CountAuthorized returns the size of the population matching any group.
	CountAuthorized(ctx context.Context, groups []domain.Group) (int, error)
}
