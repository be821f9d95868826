package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caxtonapp/push-relay-go/internal/repository"
)

// SweepJob periodically deletes pairing codes past their lifetime. It
// replaces the on-insert database trigger the original deployment used; a
// timer keeps garbage collection off the request path entirely.
type SweepJob struct {
	codeRepo repository.CodeRepository
	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
}

func NewSweepJob(codeRepo repository.CodeRepository, ttl, interval time.Duration) *SweepJob {
	return &SweepJob{
		codeRepo: codeRepo,
		ttl:      ttl,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *SweepJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Dur("ttl", j.ttl).Msg("code sweep job started")
}

func (j *SweepJob) Stop() {
	close(j.done)
	log.Info().Msg("code sweep job stopped")
}

func (j *SweepJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *SweepJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.codeRepo.DeleteOlderThan(ctx, j.ttl)
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep stale pairing codes")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("swept stale pairing codes")
	}
}
