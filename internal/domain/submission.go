package domain

import (
	"fmt"
	"time"
)

// CanTransition reports whether a submission may move from one status to another.
// Only single forward steps are allowed.
func CanTransition(from, to Status) bool {
	return from.rank() > 0 && to.rank() == from.rank()+1
}

// NewSubmission creates a started attempt.
func NewSubmission(id, quizID, studentID string, startTime time.Time) Submission {
	return Submission{
		ID:        id,
		QuizID:    quizID,
		StudentID: studentID,
		Status:    StatusStarted,
		StartTime: startTime,
		Answers:   []Answer{},
	}
}

// SetAnswer upserts the answer for question. A nil selection clears it.
func (s *Submission) SetAnswer(question Question, selected *int) error {
	if s.Status != StatusStarted {
		return ErrAlreadySubmitted
	}
	if selected != nil && (*selected < 0 || *selected >= len(question.Options)) {
		return fmt.Errorf("%w: question %s has %d options, got %d", ErrInvalidAnswerIndex, question.ID, len(question.Options), *selected)
	}
	var value *int
	if selected != nil {
		v := *selected
		value = &v
	}
	for i := range s.Answers {
		if s.Answers[i].QuestionID == question.ID {
			s.Answers[i].SelectedOption = value
			return nil
		}
	}
	s.Answers = append(s.Answers, Answer{QuestionID: question.ID, SelectedOption: value})
	return nil
}

// Submit freezes the answers at the given instant.
func (s *Submission) Submit(at time.Time, reason EndReason) error {
	if !CanTransition(s.Status, StatusSubmitted) {
		return ErrAlreadySubmitted
	}
	if at.Before(s.StartTime) {
		at = s.StartTime
	}
	s.Status = StatusSubmitted
	s.SubmitTime = &at
	s.EndReason = reason
	return nil
}

// ApplyEvaluation stamps per-answer results and the total onto a submitted attempt.
func (s *Submission) ApplyEvaluation(ev Evaluation, at time.Time) error {
	switch s.Status {
	case StatusStarted:
		return ErrNotSubmitted
	case StatusEvaluated:
		return ErrAlreadySubmitted
	}
	byQuestion := make(map[string]QuestionResult, len(ev.PerQuestion))
	for _, r := range ev.PerQuestion {
		byQuestion[r.QuestionID] = r
	}
	for i := range s.Answers {
		r := byQuestion[s.Answers[i].QuestionID]
		s.Answers[i].IsCorrect = r.IsCorrect
		s.Answers[i].Marks = r.Marks
	}
	s.TotalMarks = ev.TotalMarks
	s.Status = StatusEvaluated
	s.EvaluatedAt = &at
	return nil
}

// Scored reports whether the submission carries a final score.
func (s Submission) Scored() bool {
	return s.Status == StatusEvaluated
}

// Finished reports whether the attempt has left the started state.
func (s Submission) Finished() bool {
	return s.Status == StatusSubmitted || s.Status == StatusEvaluated
}
