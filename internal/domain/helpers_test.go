package domain

import "time"

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func sampleQuiz() Quiz {
	return Quiz{
		ID:            "quiz-1",
		Title:         "Data Structures Midterm",
		AllowedGroups: []Group{{Department: "CS", Year: 1, Section: "A"}},
		StartTime:     base,
		EndTime:       base.Add(60 * time.Minute),
		Duration:      30,
		Questions: []Question{
			{ID: "q1", Prompt: "Stack order?", Options: []string{"FIFO", "LIFO", "Random", "Sorted"}, CorrectAnswerIndex: 1, Marks: 2},
			{ID: "q2", Prompt: "Queue order?", Options: []string{"FIFO", "LIFO", "Random", "Sorted"}, CorrectAnswerIndex: 0, Marks: 3},
			{ID: "q3", Prompt: "Heap root?", Options: []string{"Leaf", "Median", "Extreme", "Random"}, CorrectAnswerIndex: 2, Marks: 5},
		},
	}
}
