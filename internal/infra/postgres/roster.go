package postgres

import (
	"context"
	"errors"
	"fmt"

	"college-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Roster reads students from the students table. The table is filled by the
// identity service or the import command; the quiz service never edits it otherwise.
type Roster struct {
	pool *pgxpool.Pool
}

func NewRoster(pool *pgxpool.Pool) *Roster {
	return &Roster{pool: pool}
}

func (r *Roster) GetStudent(ctx context.Context, studentID string) (domain.Student, error) {
	var st domain.Student
	err := r.pool.QueryRow(ctx,
		`SELECT id, department, year, section, admission_number FROM students WHERE id=$1`,
		studentID).Scan(&st.ID, &st.Department, &st.Year, &st.Section, &st.AdmissionNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("load student: %w", err)
	}
	return st, nil
}

// CountAuthorized counts students whose (department, year, section) equals one
// of the groups exactly.
func (r *Roster) CountAuthorized(ctx context.Context, groups []domain.Group) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}
	departments := make([]string, len(groups))
	years := make([]int32, len(groups))
	sections := make([]string, len(groups))
	for i, g := range groups {
		departments[i], years[i], sections[i] = g.Department, int32(g.Year), g.Section
	}

	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM students s
		WHERE EXISTS (
			SELECT 1 FROM unnest($1::text[], $2::int[], $3::text[]) AS g(department, year, section)
			WHERE g.department = s.department AND g.year = s.year AND g.section = s.section
		)`, departments, years, sections).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count authorized students: %w", err)
	}
	return n, nil
}

// PutStudents upserts students in one transaction.
func (r *Roster) PutStudents(ctx context.Context, students []domain.Student) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, st := range students {
		_, err := tx.Exec(ctx, `
			INSERT INTO students (id, department, year, section, admission_number)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET department = EXCLUDED.department,
			    year = EXCLUDED.year,
			    section = EXCLUDED.section,
			    admission_number = EXCLUDED.admission_number`,
			st.ID, st.Department, st.Year, st.Section, st.AdmissionNumber)
		if err != nil {
			return fmt.Errorf("put student %s: %w", st.ID, err)
		}
	}
	return tx.Commit(ctx)
}
