package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"junkmart/web/internal/clients"
	"junkmart/web/internal/config"
	"junkmart/web/internal/resources"
)

const (
	sweepSpec  = "0 */5 * * * *"
	jobTimeout = 10 * time.Second
)

// Scheduler refreshes the polled resources of signed-in browsers and drops
// browsers that went quiet.
type Scheduler struct {
	cron     *cron.Cron
	registry *clients.Registry
	polling  config.PollingConfig
	idle     time.Duration
	log      zerolog.Logger
}

func NewScheduler(registry *clients.Registry, polling config.PollingConfig, idle time.Duration, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		registry: registry,
		polling:  polling,
		idle:     idle,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.polling.ChatInterval > 0 {
		if _, err := s.cron.AddFunc(every(s.polling.ChatInterval), s.refreshChats); err != nil {
			return fmt.Errorf("schedule chat polling: %w", err)
		}
	}
	if s.polling.NotificationInterval > 0 {
		if _, err := s.cron.AddFunc(every(s.polling.NotificationInterval), s.refreshUnreadCounts); err != nil {
			return fmt.Errorf("schedule notification polling: %w", err)
		}
	}
	if s.idle > 0 {
		if _, err := s.cron.AddFunc(sweepSpec, s.sweep); err != nil {
			return fmt.Errorf("schedule sweep: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for running jobs.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler jobs still running at shutdown")
	}
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

func (s *Scheduler) refreshChats() {
	s.revalidate(resources.KeyChats)
}

func (s *Scheduler) refreshUnreadCounts() {
	s.revalidate(resources.KeyUnreadCount)
}

// revalidate refreshes key for every signed-in client that has read it
// before. Clients that never asked for it are left alone.
func (s *Scheduler) revalidate(key string) {
	var refreshed, failed int
	s.registry.Each(func(c *clients.Client) {
		if !c.Session.Snapshot().IsAuthenticated() || !c.Resources.Cache().Has(key) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := c.Resources.Cache().Revalidate(ctx, key); err != nil && !errors.Is(err, resources.ErrNotCached) {
			failed++
			s.log.Warn().Err(err).Str("client_id", c.ID).Str("resource", key).Msg("revalidate failed")
			return
		}
		refreshed++
	})
	if refreshed+failed > 0 {
		s.log.Debug().Str("resource", key).Int("refreshed", refreshed).Int("failed", failed).Msg("polling pass")
	}
}

func (s *Scheduler) sweep() {
	if n := s.registry.Sweep(s.idle); n > 0 {
		s.log.Info().Int("dropped", n).Msg("idle clients swept")
	}
}
