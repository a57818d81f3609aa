package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"college-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const submissionColumns = `id, quiz_id, student_id, status, start_time, submit_time, evaluated_at, end_reason, answers, total_marks, revision`

// SubmissionStore persists attempts in the submissions table. The primary key
// (quiz_id, student_id) enforces one attempt per student and quiz.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Create(ctx context.Context, sub domain.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (quiz_id, student_id) DO NOTHING`,
		sub.ID, sub.QuizID, sub.StudentID, string(sub.Status), sub.StartTime,
		sub.SubmitTime, sub.EvaluatedAt, nullableReason(sub.EndReason), string(answers), sub.TotalMarks, sub.Revision)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateAttempt
	}
	return nil
}

func (s *SubmissionStore) Get(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE quiz_id=$1 AND student_id=$2`,
		quizID, studentID)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return sub, err
}

// Update writes sub only while the stored status still equals expected and the
// stored revision equals sub.Revision.
func (s *SubmissionStore) Update(ctx context.Context, sub domain.Submission, expected domain.Status) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE submissions
		SET status=$3, submit_time=$4, evaluated_at=$5, end_reason=$6, answers=$7, total_marks=$8,
		    revision=revision+1
		WHERE quiz_id=$1 AND student_id=$2 AND status=$9 AND revision=$10`,
		sub.QuizID, sub.StudentID, string(sub.Status), sub.SubmitTime, sub.EvaluatedAt,
		nullableReason(sub.EndReason), string(answers), sub.TotalMarks, string(expected), sub.Revision)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status string
	err = s.pool.QueryRow(ctx,
		`SELECT status FROM submissions WHERE quiz_id=$1 AND student_id=$2`,
		sub.QuizID, sub.StudentID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSubmissionNotFound
	}
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if domain.Status(status) != expected {
		return domain.ErrAlreadySubmitted
	}
	return domain.ErrStaleSubmission
}

func (s *SubmissionStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Submission, error) {
	return s.list(ctx, `WHERE quiz_id=$1`, quizID)
}

func (s *SubmissionStore) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Submission, error) {
	return s.list(ctx, `WHERE status=$1`, string(status))
}

func (s *SubmissionStore) CountByQuiz(ctx context.Context, quizID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM submissions WHERE quiz_id=$1`, quizID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func (s *SubmissionStore) DeleteByQuiz(ctx context.Context, quizID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM submissions WHERE quiz_id=$1`, quizID); err != nil {
		return fmt.Errorf("delete submissions: %w", err)
	}
	return nil
}

func (s *SubmissionStore) list(ctx context.Context, where string, arg interface{}) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions `+where+` ORDER BY start_time, student_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []domain.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		sub       domain.Submission
		status    string
		endReason *string
		answers   []byte
		submitAt  *time.Time
		evalAt    *time.Time
	)
	err := row.Scan(&sub.ID, &sub.QuizID, &sub.StudentID, &status, &sub.StartTime,
		&submitAt, &evalAt, &endReason, &answers, &sub.TotalMarks, &sub.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Submission{}, err
		}
		return domain.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	sub.Status = domain.Status(status)
	sub.SubmitTime = utcPtr(submitAt)
	sub.EvaluatedAt = utcPtr(evalAt)
	sub.StartTime = sub.StartTime.UTC()
	if endReason != nil {
		sub.EndReason = domain.EndReason(*endReason)
	}
	if err := json.Unmarshal(answers, &sub.Answers); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return sub, nil
}

func nullableReason(r domain.EndReason) *string {
	if r == "" {
		return nil
	}
	s := string(r)
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
