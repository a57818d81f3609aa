package domain

import "time"

// Bucket names a score band in the distribution.
type Bucket string

const (
	BucketExcellent Bucket = "excellent"
	BucketGood      Bucket = "good"
	BucketAverage   Bucket = "average"
	BucketPoor      Bucket = "poor"
)

// BucketFor places a percentage into exactly one band.
func BucketFor(percent float64) Bucket {
	switch {
	case percent > 90:
		return BucketExcellent
	case percent > 70:
		return BucketGood
	case percent > 50:
		return BucketAverage
	default:
		return BucketPoor
	}
}

// Distribution counts scored submissions per band.
type Distribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
}

func (d *Distribution) add(b Bucket) {
	switch b {
	case BucketExcellent:
		d.Excellent++
	case BucketGood:
		d.Good++
	case BucketAverage:
		d.Average++
	default:
		d.Poor++
	}
}

// Total is the number of bucketed submissions.
func (d Distribution) Total() int {
	return d.Excellent + d.Good + d.Average + d.Poor
}

// QuestionStats is how the cohort fared on a single question.
type QuestionStats struct {
	QuestionID  string  `json:"questionId"`
	Attempted   int     `json:"attempted"`
	Correct     int     `json:"correct"`
	CorrectRate float64 `json:"correctRate"`
}

// Statistics summarizes all submissions of one quiz.
type Statistics struct {
	QuizID                  string          `json:"quizId"`
	TotalAuthorizedStudents int             `json:"totalAuthorizedStudents"`
	StartedCount            int             `json:"startedCount"`
	SubmittedCount          int             `json:"submittedCount"`
	ScoredCount             int             `json:"scoredCount"`
	SubmissionRate          float64         `json:"submissionRate"`
	AverageScorePercent     float64         `json:"averageScorePercent"`
	HighestPercent          float64         `json:"highestPercent"`
	LowestPercent           float64         `json:"lowestPercent"`
	AverageDurationSeconds  float64         `json:"averageDurationSeconds"`
	Distribution            Distribution    `json:"distribution"`
	Questions               []QuestionStats `json:"questions"`
}

// Aggregate computes statistics for a quiz. Only evaluated submissions carry a
// score; submitted-but-unscored ones are counted but not bucketed. A zero
// population yields a zero submission rate.
func Aggregate(quiz Quiz, submissions []Submission, totalAuthorizedStudents int) Statistics {
	stats := Statistics{
		QuizID:                  quiz.ID,
		TotalAuthorizedStudents: totalAuthorizedStudents,
		Questions:               make([]QuestionStats, len(quiz.Questions)),
	}
	index := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		stats.Questions[i].QuestionID = q.ID
		index[q.ID] = i
	}

	maxMarks := quiz.TotalMarks()
	var percentSum, durationSum float64
	for _, sub := range submissions {
		if sub.QuizID != quiz.ID {
			continue
		}
		if sub.Status == StatusStarted {
			stats.StartedCount++
			continue
		}
		stats.SubmittedCount++
		durationSum += sub.DurationTaken().Seconds()

		if !sub.Scored() {
			continue
		}
		percent := Percent(sub.TotalMarks, maxMarks)
		if stats.ScoredCount == 0 || percent > stats.HighestPercent {
			stats.HighestPercent = percent
		}
		if stats.ScoredCount == 0 || percent < stats.LowestPercent {
			stats.LowestPercent = percent
		}
		stats.ScoredCount++
		percentSum += percent
		stats.Distribution.add(BucketFor(percent))

		for _, a := range sub.Answers {
			i, ok := index[a.QuestionID]
			if !ok || a.SelectedOption == nil {
				continue
			}
			stats.Questions[i].Attempted++
			if a.IsCorrect {
				stats.Questions[i].Correct++
			}
		}
	}

	if totalAuthorizedStudents > 0 {
		stats.SubmissionRate = float64(stats.SubmittedCount) / float64(totalAuthorizedStudents)
	}
	if stats.ScoredCount > 0 {
		stats.AverageScorePercent = percentSum / float64(stats.ScoredCount)
	}
	if stats.SubmittedCount > 0 {
		stats.AverageDurationSeconds = durationSum / float64(stats.SubmittedCount)
	}
	for i := range stats.Questions {
		if stats.Questions[i].Attempted > 0 {
			stats.Questions[i].CorrectRate = float64(stats.Questions[i].Correct) / float64(stats.Questions[i].Attempted)
		}
	}
	return stats
}

// Overview is the dashboard summary across a set of quizzes.
type Overview struct {
	TotalQuizzes        int     `json:"totalQuizzes"`
	Upcoming            int     `json:"upcoming"`
	Active              int     `json:"active"`
	Expired             int     `json:"expired"`
	TotalSubmissions    int     `json:"totalSubmissions"`
	AverageScorePercent float64 `json:"averageScorePercent"`
}

// Summarize rolls per-quiz statistics up into an overview. The mean is
// weighted by each quiz's number of scored submissions.
func Summarize(quizzes []Quiz, stats map[string]Statistics, now time.Time) Overview {
	var ov Overview
	var weighted float64
	scored := 0
	for _, quiz := range quizzes {
		ov.TotalQuizzes++
		switch Classify(quiz, now) {
		case Upcoming:
			ov.Upcoming++
		case Active:
			ov.Active++
		case Expired:
			ov.Expired++
		}
		s, ok := stats[quiz.ID]
		if !ok {
			continue
		}
		ov.TotalSubmissions += s.SubmittedCount
		weighted += s.AverageScorePercent * float64(s.ScoredCount)
		scored += s.ScoredCount
	}
	if scored > 0 {
		ov.AverageScorePercent = weighted / float64(scored)
	}
	return ov
}
