package domain

import "time"

// WindowState is the externally visible label of a quiz at an instant.
type WindowState string

const (
	Upcoming  WindowState = "Upcoming"
	Active    WindowState = "Active"
	Expired   WindowState = "Expired"
	Completed WindowState = "Completed"
)

// Classify places now relative to the quiz window. Both bounds are inclusive.
func Classify(quiz Quiz, now time.Time) WindowState {
	switch {
	case now.Before(quiz.StartTime):
		return Upcoming
	case now.After(quiz.EndTime):
		return Expired
	default:
		return Active
	}
}

// Label overlays submission existence on the time-based state.
func Label(quiz Quiz, submission *Submission, now time.Time) WindowState {
	if submission != nil {
		return Completed
	}
	return Classify(quiz, now)
}

// Deadline is the instant a started attempt must be submitted by: the end of
// the student's duration budget or the quiz end, whichever comes first.
func Deadline(quiz Quiz, submission Submission) time.Time {
	budget := submission.StartTime.Add(quiz.AttemptDuration())
	if budget.After(quiz.EndTime) {
		return quiz.EndTime
	}
	return budget
}

// DeadlinePassed reports whether a started attempt is overdue at now.
func DeadlinePassed(quiz Quiz, submission Submission, now time.Time) bool {
	return now.After(Deadline(quiz, submission))
}

// SubmitInstant returns the submit time to record for an attempt submitted at
// now. Past the deadline the instant is clamped to the deadline and the reason
// names the boundary that was crossed.
func SubmitInstant(quiz Quiz, submission Submission, now time.Time) (time.Time, EndReason) {
	if !DeadlinePassed(quiz, submission, now) {
		return now, EndReasonManual
	}
	if submission.StartTime.Add(quiz.AttemptDuration()).After(quiz.EndTime) {
		return quiz.EndTime, EndReasonWindowClosed
	}
	return Deadline(quiz, submission), EndReasonDurationElapsed
}
