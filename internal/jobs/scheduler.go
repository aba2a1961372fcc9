package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/repository"
)

// Scheduler runs the periodic maintenance sweeps: unfinished signups that
// never confirmed their email, and attribute values left behind by deleted
// items or attributes.
type Scheduler struct {
	cron  *cron.Cron
	users *repository.UserRepository
	items *repository.ItemRepository
	log   zerolog.Logger
}

func NewScheduler(users *repository.UserRepository, items *repository.ItemRepository, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		users: users,
		items: items,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.sweepStaleSignups); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.sweepOrphanedValues); err != nil { // hourly recheck
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for running sweeps to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) sweepStaleSignups() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Unconfirmed accounts older than a week are abandoned signups.
	deleted, err := s.users.DeleteStaleUnverified(ctx, 7)
	if err != nil {
		s.log.Error().Err(err).Msg("stale signup sweep failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("stale signups removed")
	}
}

func (s *Scheduler) sweepOrphanedValues() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.items.DeleteOrphanedAttributeValues(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("orphaned attribute value sweep failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("orphaned attribute values removed")
	}
}
