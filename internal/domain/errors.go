package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrStudentNotFound is returned when the roster has no such student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrSubmissionNotFound is returned when a student acts on an attempt that was never started.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrQuestionNotFound indicates an answered question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrNotEligible means the student's group is not allowed to take the quiz.
	ErrNotEligible = errors.New("student is not eligible for this quiz")
	// ErrWindowClosed means the quiz or the attempt is outside its time window.
	ErrWindowClosed = errors.New("quiz window is closed")
	// ErrDuplicateAttempt is reported by stores when a submission already exists for the key.
	ErrDuplicateAttempt = errors.New("submission already exists")
	// ErrAlreadySubmitted means the submission is no longer in the started state.
	ErrAlreadySubmitted = errors.New("submission already submitted")
	// ErrStaleSubmission means the submission was written by someone else since it was read.
	ErrStaleSubmission = errors.New("submission changed concurrently")
	// ErrNotSubmitted means evaluation was requested for an attempt still in progress.
	ErrNotSubmitted = errors.New("submission has not been submitted")
	// ErrInvalidAnswerIndex means the selected option is outside the question's options.
	ErrInvalidAnswerIndex = errors.New("selected option out of range")
	// ErrMalformedQuiz is wrapped by ValidationError for rejected quiz definitions.
	ErrMalformedQuiz = errors.New("malformed quiz")
	// ErrQuizLocked means the quiz already has submissions and can no longer be replaced.
	ErrQuizLocked = errors.New("quiz has submissions and cannot be modified")
	// ErrForbidden means the principal's role does not allow the operation.
	ErrForbidden = errors.New("operation not permitted for role")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries the field-level reasons a quiz was rejected.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Kind classifies an error into the taxonomy exposed to callers.
// Unknown errors are infrastructure failures and map to "Internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotEligible):
		return "NotEligible"
	case errors.Is(err, ErrWindowClosed):
		return "WindowClosed"
	case errors.Is(err, ErrDuplicateAttempt):
		return "DuplicateAttempt"
	case errors.Is(err, ErrAlreadySubmitted):
		return "AlreadySubmitted"
	case errors.Is(err, ErrNotSubmitted):
		return "NotSubmitted"
	case errors.Is(err, ErrInvalidAnswerIndex):
		return "InvalidAnswerIndex"
	case errors.Is(err, ErrMalformedQuiz):
		return "MalformedQuiz"
	case errors.Is(err, ErrQuizLocked):
		return "QuizLocked"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrStaleSubmission):
		return "Conflict"
	case errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrQuestionNotFound):
		return "NotFound"
	}
	return "Internal"
}
