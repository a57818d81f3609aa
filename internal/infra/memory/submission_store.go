package memory

import (
	"context"
	"sort"
	"sync"

	"college-quiz-service/internal/domain"
)

type submissionKey struct {
	quizID    string
	studentID string
}

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
// A single mutex serializes writers, which gives the same first-writer-wins
// outcome as a unique key in a database.
type SubmissionStore struct {
	mu          sync.RWMutex
	submissions map[submissionKey]domain.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		submissions: make(map[submissionKey]domain.Submission),
	}
}

func (s *SubmissionStore) Create(_ context.Context, sub domain.Submission) error {
	key := submissionKey{sub.QuizID, sub.StudentID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[key]; ok {
		return domain.ErrDuplicateAttempt
	}
	s.submissions[key] = sub.Clone()
	return nil
}

func (s *SubmissionStore) Get(_ context.Context, quizID, studentID string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[submissionKey{quizID, studentID}]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return sub.Clone(), nil
}

func (s *SubmissionStore) Update(_ context.Context, sub domain.Submission, expected domain.Status) error {
	key := submissionKey{sub.QuizID, sub.StudentID}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.submissions[key]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	if current.Status != expected {
		return domain.ErrAlreadySubmitted
	}
	if current.Revision != sub.Revision {
		return domain.ErrStaleSubmission
	}
	stored := sub.Clone()
	stored.Revision++
	s.submissions[key] = stored
	return nil
}

func (s *SubmissionStore) ListByQuiz(_ context.Context, quizID string) ([]domain.Submission, error) {
	return s.filter(func(sub domain.Submission) bool { return sub.QuizID == quizID }), nil
}

func (s *SubmissionStore) ListByStatus(_ context.Context, status domain.Status) ([]domain.Submission, error) {
	return s.filter(func(sub domain.Submission) bool { return sub.Status == status }), nil
}

func (s *SubmissionStore) CountByQuiz(ctx context.Context, quizID string) (int, error) {
	subs, _ := s.ListByQuiz(ctx, quizID)
	return len(subs), nil
}

func (s *SubmissionStore) DeleteByQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.submissions {
		if key.quizID == quizID {
			delete(s.submissions, key)
		}
	}
	return nil
}

func (s *SubmissionStore) filter(keep func(domain.Submission) bool) []domain.Submission {
	s.mu.RLock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.submissions {
		if keep(sub) {
			out = append(out, sub.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}
