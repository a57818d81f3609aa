package app

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically force-submits attempts whose deadline passed while the
// student was away.
type Sweeper struct {
	attempts *AttemptService
	interval time.Duration
}

func NewSweeper(attempts *AttemptService, interval time.Duration) *Sweeper {
	return &Sweeper{attempts: attempts, interval: interval}
}

// Run blocks until ctx is canceled. A non-positive interval disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	log.Printf("attempt sweeper started (every %s)", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("attempt sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and logs its outcome.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	n, err := s.attempts.SweepExpired(ctx)
	if err != nil {
		log.Printf("attempt sweep failed after %d submissions: %v", n, err)
		return n
	}
	if n > 0 {
		log.Printf("attempt sweep auto-submitted %d attempts", n)
	}
	return n
}
