package memory

import (
	"context"
	"sync"

	"college-quiz-service/internal/domain"
)

// Roster is a read-mostly student directory backed by a map.
type Roster struct {
	mu       sync.RWMutex
	students map[string]domain.Student
}

func NewRoster(students ...domain.Student) *Roster {
	r := &Roster{students: make(map[string]domain.Student, len(students))}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *Roster) GetStudent(_ context.Context, studentID string) (domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.students[studentID]; ok {
		return s, nil
	}
	return domain.Student{}, domain.ErrStudentNotFound
}

func (r *Roster) CountAuthorized(_ context.Context, groups []domain.Group) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.students {
		if domain.MatchesAny(groups, s) {
			n++
		}
	}
	return n, nil
}
