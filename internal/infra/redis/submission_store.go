package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"college-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxCASRetries = 5

// SubmissionStore keeps submissions in Redis so several server processes share
// one view of attempts.
//
//	submission:{quizID}:{studentID}   JSON document
//	quiz:{quizID}:submissions         SET of submission keys
//	submissions:status:{status}       SET of submission keys
//
// Creation and updates run inside WATCH/MULTI so the first writer wins and
// every write is compare-and-set on the stored status and revision.
type SubmissionStore struct {
	client *redis.Client
}

func NewSubmissionStore(client *redis.Client) *SubmissionStore {
	return &SubmissionStore{client: client}
}

func (s *SubmissionStore) Create(ctx context.Context, sub domain.Submission) error {
	key := s.key(sub.QuizID, sub.StudentID)
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return domain.ErrDuplicateAttempt
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, s.quizIndex(sub.QuizID), key)
			pipe.SAdd(ctx, s.statusIndex(sub.Status), key)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// someone else wrote the key between WATCH and EXEC
		return domain.ErrDuplicateAttempt
	}
	return err
}

func (s *SubmissionStore) Get(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	data, err := s.client.Get(ctx, s.key(quizID, studentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, err
	}
	return decodeSubmission(data)
}

func (s *SubmissionStore) Update(ctx context.Context, sub domain.Submission, expected domain.Status) error {
	key := s.key(sub.QuizID, sub.StudentID)
	next := sub
	next.Revision++
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return domain.ErrSubmissionNotFound
			}
			if err != nil {
				return err
			}
			current, err := decodeSubmission(raw)
			if err != nil {
				return err
			}
			if current.Status != expected {
				return domain.ErrAlreadySubmitted
			}
			if current.Revision != sub.Revision {
				return domain.ErrStaleSubmission
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				if current.Status != sub.Status {
					pipe.SRem(ctx, s.statusIndex(current.Status), key)
					pipe.SAdd(ctx, s.statusIndex(sub.Status), key)
				}
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update submission %s: %w", key, err)
}

func (s *SubmissionStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Submission, error) {
	return s.listIndex(ctx, s.quizIndex(quizID))
}

func (s *SubmissionStore) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Submission, error) {
	return s.listIndex(ctx, s.statusIndex(status))
}

func (s *SubmissionStore) CountByQuiz(ctx context.Context, quizID string) (int, error) {
	n, err := s.client.SCard(ctx, s.quizIndex(quizID)).Result()
	return int(n), err
}

func (s *SubmissionStore) DeleteByQuiz(ctx context.Context, quizID string) error {
	index := s.quizIndex(quizID)
	keys, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, st := range []domain.Status{domain.StatusStarted, domain.StatusSubmitted, domain.StatusEvaluated} {
			pipe.SRem(ctx, s.statusIndex(st), members...)
		}
		pipe.Del(ctx, index)
		return nil
	})
	return err
}

func (s *SubmissionStore) listIndex(ctx context.Context, index string) ([]domain.Submission, error) {
	keys, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Submission, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document; deleted concurrently
			continue
		}
		sub, err := decodeSubmission([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func decodeSubmission(data []byte) (domain.Submission, error) {
	var sub domain.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal submission: %w", err)
	}
	return sub, nil
}

func (s *SubmissionStore) key(quizID, studentID string) string {
	return "submission:" + quizID + ":" + studentID
}

func (s *SubmissionStore) quizIndex(quizID string) string {
	return "quiz:" + quizID + ":submissions"
}

func (s *SubmissionStore) statusIndex(status domain.Status) string {
	return "submissions:status:" + string(status)
}
