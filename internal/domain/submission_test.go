package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionOnlyForward(t *testing.T) {
	all := []Status{StatusStarted, StatusSubmitted, StatusEvaluated, Status("bogus")}
	allowed := map[[2]Status]bool{
		{StatusStarted, StatusSubmitted}:   true,
		{StatusSubmitted, StatusEvaluated}: true,
	}
	for _, from := range all {
		for _, to := range all {
			if got := CanTransition(from, to); got != allowed[[2]Status{from, to}] {
				t.Fatalf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestSubmissionLifecycle(t *testing.T) {
	quiz := sampleQuiz()
	sub := NewSubmission("id", quiz.ID, "s1", base)

	if err := sub.SetAnswer(quiz.Questions[0], intPtr(1)); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	if err := sub.SetAnswer(quiz.Questions[0], nil); err != nil {
		t.Fatalf("clear answer: %v", err)
	}
	if a, _ := sub.Answer("q1"); a.SelectedOption != nil {
		t.Fatalf("expected cleared answer")
	}
	if err := sub.SetAnswer(quiz.Questions[1], intPtr(4)); !errors.Is(err, ErrInvalidAnswerIndex) {
		t.Fatalf("expected ErrInvalidAnswerIndex, got %v", err)
	}
	if err := sub.SetAnswer(quiz.Questions[1], intPtr(0)); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	if err := sub.ApplyEvaluation(Evaluate(quiz, sub.Answers), base); err != ErrNotSubmitted {
		t.Fatalf("expected ErrNotSubmitted, got %v", err)
	}

	if err := sub.Submit(base.Add(10*time.Minute), EndReasonManual); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.DurationTaken() != 10*time.Minute {
		t.Fatalf("expected 10m taken, got %v", sub.DurationTaken())
	}
	if err := sub.SetAnswer(quiz.Questions[2], intPtr(2)); err != ErrAlreadySubmitted {
		t.Fatalf("expected frozen answers, got %v", err)
	}
	if err := sub.ApplyEvaluation(Evaluate(quiz, sub.Answers), base.Add(11*time.Minute)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if sub.TotalMarks != 3 || sub.Status != StatusEvaluated {
		t.Fatalf("expected evaluated with 3 marks, got %+v", sub)
	}
	if a, _ := sub.Answer("q2"); !a.IsCorrect || a.Marks != 3 {
		t.Fatalf("expected q2 correct, got %+v", a)
	}

	if err := sub.Submit(base, EndReasonManual); err != ErrAlreadySubmitted {
		t.Fatalf("expected no backward transition, got %v", err)
	}
	if err := sub.ApplyEvaluation(Evaluation{}, base); err != ErrAlreadySubmitted {
		t.Fatalf("expected no re-evaluation, got %v", err)
	}
}

func TestSubmitNeverBeforeStart(t *testing.T) {
	sub := NewSubmission("id", "quiz", "s1", base)
	if err := sub.Submit(base.Add(-time.Minute), EndReasonManual); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.SubmitTime.Before(sub.StartTime) {
		t.Fatalf("submitTime before startTime")
	}
}

func TestCloneDoesNotShareAnswers(t *testing.T) {
	sub := NewSubmission("id", "quiz", "s1", base)
	sub.Answers = append(sub.Answers, Answer{QuestionID: "q1", SelectedOption: intPtr(1)})
	cp := sub.Clone()
	*cp.Answers[0].SelectedOption = 3
	if *sub.Answers[0].SelectedOption != 1 {
		t.Fatalf("clone shares answer storage")
	}
}
