package domain

// QuestionResult is the scored outcome of one question.
type QuestionResult struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
	Marks          int    `json:"marks"`
	MaxMarks       int    `json:"maxMarks"`
}

// Evaluation is the result of scoring a set of frozen answers.
type Evaluation struct {
	PerQuestion []QuestionResult `json:"perQuestion"`
	TotalMarks  int              `json:"totalMarks"`
	MaxMarks    int              `json:"maxMarks"`
}

// Evaluate scores answers against the quiz. All-or-nothing per question, no
// negative marking. Results follow the quiz's question order; unanswered
// questions score zero and answers to unknown questions are ignored.
func Evaluate(quiz Quiz, answers []Answer) Evaluation {
	selected := make(map[string]*int, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedOption
	}

	ev := Evaluation{
		PerQuestion: make([]QuestionResult, 0, len(quiz.Questions)),
		MaxMarks:    quiz.TotalMarks(),
	}
	for _, q := range quiz.Questions {
		choice := selected[q.ID]
		result := QuestionResult{
			QuestionID:     q.ID,
			SelectedOption: choice,
			MaxMarks:       q.Marks,
		}
		if choice != nil && *choice == q.CorrectAnswerIndex {
			result.IsCorrect = true
			result.Marks = q.Marks
		}
		ev.TotalMarks += result.Marks
		ev.PerQuestion = append(ev.PerQuestion, result)
	}
	return ev
}

// Percent converts marks to a percentage of the maximum; 0 when max is 0.
func Percent(marks, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(marks) * 100 / float64(max)
}
