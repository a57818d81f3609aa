package cli

import (
	"time"

	"college-quiz-service/internal/domain"
)

// sampleQuizzes backs the in-memory mode: one quiz running now, one later today
// and one already closed, all relative to now.
func sampleQuizzes(now time.Time) []domain.Quiz {
	now = now.Truncate(time.Minute)
	questions := []domain.Question{
		{ID: "q1", Prompt: "Which data structure is LIFO?", Options: []string{"Queue", "Stack", "Heap", "Graph"}, CorrectAnswerIndex: 1, Marks: 2},
		{ID: "q2", Prompt: "Binary search runs in?", Options: []string{"O(log n)", "O(n)", "O(n log n)", "O(1)"}, CorrectAnswerIndex: 0, Marks: 3},
		{ID: "q3", Prompt: "Which traversal visits the root first?", Options: []string{"Inorder", "Postorder", "Preorder", "Level order"}, CorrectAnswerIndex: 2, Marks: 5},
	}
	csA := []domain.Group{{Department: "CS", Year: 2, Section: "A"}}
	return []domain.Quiz{
		{
			ID:            "ds-quiz-1",
			Title:         "Data Structures Quiz 1",
			AllowedGroups: csA,
			StartTime:     now.Add(-10 * time.Minute),
			EndTime:       now.Add(2 * time.Hour),
			Duration:      30,
			Questions:     questions,
		},
		{
			ID:            "ds-quiz-2",
			Title:         "Data Structures Quiz 2",
			AllowedGroups: append(csA, domain.Group{Department: "CS", Year: 2, Section: "B"}),
			StartTime:     now.Add(4 * time.Hour),
			EndTime:       now.Add(5 * time.Hour),
			Duration:      20,
			Questions:     questions[:2],
		},
		{
			ID:            "circuits-quiz",
			Title:         "Circuits Warm-up",
			AllowedGroups: []domain.Group{{Department: "EE", Year: 1, Section: "A"}},
			StartTime:     now.Add(-48 * time.Hour),
			EndTime:       now.Add(-47 * time.Hour),
			Duration:      15,
			Questions: []domain.Question{
				{ID: "q1", Prompt: "Unit of resistance?", Options: []string{"Volt", "Ampere", "Ohm", "Watt"}, CorrectAnswerIndex: 2, Marks: 1},
			},
		},
	}
}

func sampleStudents() []domain.Student {
	return []domain.Student{
		{ID: "cs2-a-01", Department: "CS", Year: 2, Section: "A", AdmissionNumber: "CS2024-001"},
		{ID: "cs2-a-02", Department: "CS", Year: 2, Section: "A", AdmissionNumber: "CS2024-002"},
		{ID: "cs2-b-01", Department: "CS", Year: 2, Section: "B", AdmissionNumber: "CS2024-101"},
		{ID: "ee1-a-01", Department: "EE", Year: 1, Section: "A", AdmissionNumber: "EE2025-001"},
	}
}
