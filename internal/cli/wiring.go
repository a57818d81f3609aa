package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"college-quiz-service/internal/app"
	"college-quiz-service/internal/config"
	"college-quiz-service/internal/infra/memory"
	"college-quiz-service/internal/infra/postgres"
	redisinfra "college-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// services is everything a command needs, built from config. Postgres is the
// source of truth when configured; Redis fronts it as a quiz cache and holds
// submissions when there is no database. With neither the service runs on
// in-memory adapters seeded with sample data.
type services struct {
	quizzes    *app.QuizService
	attempts   *app.AttemptService
	roster     app.Roster
	pgRoster   *postgres.Roster
	sweepEvery time.Duration
	closers    []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{sweepEvery: config.TTLDuration(cfg.Attempts.SweepInterval, 30*time.Second)}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		svc.closers = append(svc.closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		svc.closers = append(svc.closers, pool.Close)
	}

	var (
		store       app.QuizStore
		submissions app.SubmissionRepository
	)
	switch {
	case pool != nil:
		store = postgres.NewQuizStore(pool)
		submissions = postgres.NewSubmissionStore(pool)
		svc.pgRoster = postgres.NewRoster(pool)
		svc.roster = svc.pgRoster
	case redisClient != nil:
		log.Printf("no postgres configured: quizzes and roster are in-memory sample data, submissions in redis")
		store = memory.NewQuizStore(sampleQuizzes(time.Now().UTC())...)
		submissions = redisinfra.NewSubmissionStore(redisClient)
		svc.roster = memory.NewRoster(sampleStudents()...)
	default:
		log.Printf("no postgres or redis configured: using in-memory adapters with sample data")
		store = memory.NewQuizStore(sampleQuizzes(time.Now().UTC())...)
		submissions = memory.NewSubmissionStore()
		svc.roster = memory.NewRoster(sampleStudents()...)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, store, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(store, quizTTL)
	}

	svc.attempts = app.NewAttemptService(quizRepo, submissions, app.AttemptConfig{
		EvaluateOnSubmit: cfg.EvaluateOnSubmit(),
	})
	svc.quizzes = app.NewQuizService(store, quizRepo, submissions, svc.roster)
	return svc, nil
}
