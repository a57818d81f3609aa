package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"college-quiz-service/internal/domain"
)

// QuizService contains the authoring, listing and statistics use cases.
type QuizService struct {
	store       QuizStore
	quizzes     QuizRepository
	submissions SubmissionRepository
	roster      Roster
	now         func() time.Time
}

func NewQuizService(store QuizStore, quizzes QuizRepository, submissions SubmissionRepository, roster Roster) *QuizService {
	return NewQuizServiceWithClock(store, quizzes, submissions, roster, func() time.Time { return time.Now().UTC() })
}

// NewQuizServiceWithClock is test-only for deterministic window labels.
func NewQuizServiceWithClock(store QuizStore, quizzes QuizRepository, submissions SubmissionRepository, roster Roster, now func() time.Time) *QuizService {
	return &QuizService{store: store, quizzes: quizzes, submissions: submissions, roster: roster, now: now}
}

// QuestionView is a question as shown to a principal. Students never see the answer key.
type QuestionView struct {
	ID                 string   `json:"id"`
	Prompt             string   `json:"prompt"`
	Options            []string `json:"options"`
	Marks              int      `json:"marks"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex,omitempty"`
}

// QuizView is a quiz plus its window label for the principal.
type QuizView struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	AllowedGroups []domain.Group     `json:"allowedGroups"`
	StartTime     time.Time          `json:"startTime"`
	EndTime       time.Time          `json:"endTime"`
	Duration      int                `json:"duration"`
	TotalMarks    int                `json:"totalMarks"`
	State         domain.WindowState `json:"state"`
	Questions     []QuestionView     `json:"questions,omitempty"`
	Submission    *domain.Submission `json:"submission,omitempty"`
}

// Dashboard is the landing payload for a principal.
type Dashboard struct {
	View     domain.View     `json:"view"`
	Overview domain.Overview `json:"overview"`
}

// Create validates and stores a quiz. Replacing a quiz is only allowed until
// the first attempt exists. The attempt count and the save are separate store
// calls, so an attempt started between them sees the replaced quiz.
func (s *QuizService) Create(ctx context.Context, p domain.Principal, quiz domain.Quiz) (domain.Quiz, error) {
	if !p.Role.Staff() {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	count, err := s.submissions.CountByQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if count > 0 {
		return domain.Quiz{}, domain.ErrQuizLocked
	}
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.Invalidate(ctx, quiz.ID); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Delete removes a quiz together with all of its submissions.
func (s *QuizService) Delete(ctx context.Context, p domain.Principal, quizID string) error {
	if !p.Role.Staff() {
		return domain.ErrForbidden
	}
	if _, err := s.store.LoadQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.submissions.DeleteByQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.quizzes.Invalidate(ctx, quizID); err != nil {
		return err
	}
	// An attempt created after the first purge but before the quiz vanished
	// would otherwise outlive it.
	return s.submissions.DeleteByQuiz(ctx, quizID)
}

// Get returns a single quiz. Quizzes the principal may not see are reported as not found.
func (s *QuizService) Get(ctx context.Context, p domain.Principal, quizID string) (QuizView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return QuizView{}, err
	}
	if !p.CanView(quiz) {
		return QuizView{}, domain.ErrQuizNotFound
	}
	return s.view(ctx, p, quiz, true)
}

// List returns the quizzes visible to the principal, labelled with their window state.
func (s *QuizService) List(ctx context.Context, p domain.Principal) ([]QuizView, error) {
	all, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]QuizView, 0, len(all))
	for _, quiz := range all {
		if !p.CanView(quiz) {
			continue
		}
		v, err := s.view(ctx, p, quiz, false)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Statistics aggregates every submission of a quiz against its authorized population.
func (s *QuizService) Statistics(ctx context.Context, p domain.Principal, quizID string) (domain.Statistics, error) {
	if !p.Role.Staff() {
		return domain.Statistics{}, domain.ErrForbidden
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Statistics{}, err
	}
	return s.statistics(ctx, quiz)
}

// Dashboard selects the principal's landing view and summarizes the quizzes they can see.
func (s *QuizService) Dashboard(ctx context.Context, p domain.Principal) (Dashboard, error) {
	all, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	visible := make([]domain.Quiz, 0, len(all))
	stats := make(map[string]domain.Statistics)
	for _, quiz := range all {
		if !p.CanView(quiz) {
			continue
		}
		visible = append(visible, quiz)
		if !p.Role.Staff() {
			continue
		}
		st, err := s.statistics(ctx, quiz)
		if err != nil {
			return Dashboard{}, err
		}
		stats[quiz.ID] = st
	}
	return Dashboard{
		View:     p.Role.HomeView(),
		Overview: domain.Summarize(visible, stats, s.now()),
	}, nil
}

func (s *QuizService) statistics(ctx context.Context, quiz domain.Quiz) (domain.Statistics, error) {
	subs, err := s.submissions.ListByQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Statistics{}, err
	}
	now := s.now()
	for i, sub := range subs {
		settled, err := s.settle(ctx, quiz, sub, now)
		if err != nil {
			return domain.Statistics{}, fmt.Errorf("evaluate submission %s: %w", sub.ID, err)
		}
		subs[i] = settled
	}
	population, err := s.roster.CountAuthorized(ctx, quiz.AllowedGroups)
	if err != nil {
		return domain.Statistics{}, err
	}
	return domain.Aggregate(quiz, subs, population), nil
}

// settle force-submits an overdue attempt and scores any submitted one, so
// statistics never count an attempt as running past its deadline.
func (s *QuizService) settle(ctx context.Context, quiz domain.Quiz, sub domain.Submission, now time.Time) (domain.Submission, error) {
	if sub.Status == domain.StatusStarted {
		if !domain.DeadlinePassed(quiz, sub, now) {
			return sub, nil
		}
		submitted, err := submitStored(ctx, s.submissions, quiz, sub, now)
		switch {
		case errors.Is(err, domain.ErrAlreadySubmitted):
			if submitted, err = s.submissions.Get(ctx, sub.QuizID, sub.StudentID); err != nil {
				return domain.Submission{}, err
			}
		case err != nil:
			return domain.Submission{}, err
		}
		sub = submitted
	}
	if sub.Status != domain.StatusSubmitted {
		return sub, nil
	}
	return evaluateStored(ctx, s.submissions, quiz, sub, now)
}

func (s *QuizService) view(ctx context.Context, p domain.Principal, quiz domain.Quiz, withQuestions bool) (QuizView, error) {
	v := QuizView{
		ID:            quiz.ID,
		Title:         quiz.Title,
		AllowedGroups: quiz.AllowedGroups,
		StartTime:     quiz.StartTime,
		EndTime:       quiz.EndTime,
		Duration:      quiz.Duration,
		TotalMarks:    quiz.TotalMarks(),
	}

	var own *domain.Submission
	if p.Role == domain.RoleStudent && p.Student != nil {
		sub, err := s.submissions.Get(ctx, quiz.ID, p.Student.ID)
		switch {
		case err == nil:
			own = &sub
		case !errors.Is(err, domain.ErrSubmissionNotFound):
			return QuizView{}, err
		}
	}
	v.Submission = own
	v.State = domain.Label(quiz, own, s.now())

	if withQuestions {
		v.Questions = make([]QuestionView, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			qv := QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options, Marks: q.Marks}
			if p.Role.Staff() {
				idx := q.CorrectAnswerIndex
				qv.CorrectAnswerIndex = &idx
			}
			v.Questions = append(v.Questions, qv)
		}
	}
	return v, nil
}
