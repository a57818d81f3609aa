package domain

import "time"

// Group is a (department, year, section) triple a quiz is open to.
type Group struct {
	Department string `json:"department" yaml:"department" validate:"required"`
	Year       int    `json:"year" yaml:"year" validate:"min=1"`
	Section    string `json:"section" yaml:"section" validate:"required"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID                 string   `json:"id" yaml:"id" validate:"required"`
	Prompt             string   `json:"prompt" yaml:"prompt"`
	Options            []string `json:"options" yaml:"options" validate:"len=4"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex" yaml:"correctAnswerIndex" validate:"min=0,max=3"`
	Marks              int      `json:"marks" yaml:"marks" validate:"min=1"`
}

// Quiz is a timed, group-restricted collection of questions.
type Quiz struct {
	ID            string     `json:"id" yaml:"id" validate:"required"`
	Title         string     `json:"title" yaml:"title"`
	AllowedGroups []Group    `json:"allowedGroups" yaml:"allowedGroups" validate:"min=1,dive"`
	StartTime     time.Time  `json:"startTime" yaml:"startTime" validate:"required"`
	EndTime       time.Time  `json:"endTime" yaml:"endTime" validate:"required,gtfield=StartTime"`
	Duration      int        `json:"duration" yaml:"duration" validate:"min=1"` // minutes
	Questions     []Question `json:"questions" yaml:"questions" validate:"min=1,dive"`
}

// TotalMarks is the maximum score attainable on the quiz.
func (q Quiz) TotalMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}

// Question looks up a question by ID.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// AttemptDuration is the per-student time budget.
func (q Quiz) AttemptDuration() time.Duration {
	return time.Duration(q.Duration) * time.Minute
}

// Student is a roster entry. The roster owns it; this service never mutates it.
type Student struct {
	ID              string `json:"id" yaml:"id"`
	Department      string `json:"department" yaml:"department"`
	Year            int    `json:"year" yaml:"year"`
	Section         string `json:"section" yaml:"section"`
	AdmissionNumber string `json:"admissionNumber" yaml:"admissionNumber"`
}

// Group returns the triple the student belongs to.
func (s Student) Group() Group {
	return Group{Department: s.Department, Year: s.Year, Section: s.Section}
}

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusStarted   Status = "started"
	StatusSubmitted Status = "submitted"
	StatusEvaluated Status = "evaluated"
)

func (s Status) rank() int {
	switch s {
	case StatusStarted:
		return 1
	case StatusSubmitted:
		return 2
	case StatusEvaluated:
		return 3
	}
	return 0
}

// EndReason records why an attempt left the started state.
type EndReason string

const (
	EndReasonManual          EndReason = "manual"
	EndReasonDurationElapsed EndReason = "duration_elapsed"
	EndReasonWindowClosed    EndReason = "window_closed"
)

// Answer is a student's choice for one question. IsCorrect and Marks are only
// meaningful once the submission is evaluated.
type Answer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect,omitempty"`
	Marks          int    `json:"marks,omitempty"`
}

// Submission is the single attempt of one student at one quiz.
type Submission struct {
	ID          string     `json:"id"`
	QuizID      string     `json:"quizId"`
	StudentID   string     `json:"studentId"`
	Status      Status     `json:"status"`
	StartTime   time.Time  `json:"startTime"`
	SubmitTime  *time.Time `json:"submitTime,omitempty"`
	EvaluatedAt *time.Time `json:"evaluatedAt,omitempty"`
	EndReason   EndReason  `json:"endReason,omitempty"`
	Answers     []Answer   `json:"answers"`
	TotalMarks  int        `json:"totalMarks"`
	// Revision counts stored writes; stores only accept an update carrying the
	// revision they currently hold.
	Revision int `json:"revision"`
}

// DurationTaken is submitTime - startTime, zero while the attempt is running.
func (s Submission) DurationTaken() time.Duration {
	if s.SubmitTime == nil {
		return 0
	}
	return s.SubmitTime.Sub(s.StartTime)
}

// Answer returns the recorded answer for a question.
func (s Submission) Answer(questionID string) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}

// Clone returns a deep copy so stores can hand out values without sharing slices.
func (s Submission) Clone() Submission {
	out := s
	if s.SubmitTime != nil {
		t := *s.SubmitTime
		out.SubmitTime = &t
	}
	if s.EvaluatedAt != nil {
		t := *s.EvaluatedAt
		out.EvaluatedAt = &t
	}
	out.Answers = make([]Answer, len(s.Answers))
	for i, a := range s.Answers {
		if a.SelectedOption != nil {
			v := *a.SelectedOption
			a.SelectedOption = &v
		}
		out.Answers[i] = a
	}
	return out
}
