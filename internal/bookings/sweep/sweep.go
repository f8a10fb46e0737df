// Package sweep expires stale bookings. A booking whose slot started
// more than the grace period ago and is still Pending gets marked
// Expired, freeing its seat and its mobile number.
package sweep

import (
	"context"
	"time"

	"ribobook/internal/bookings/catalog"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"
)

// BookingStore is the slice of the booking store the sweeper needs.
type BookingStore interface {
	Snapshot() []model.Booking
	UpdateStatus(ctx context.Context, id string, status model.Status) error
}

// SessionCounter reports how many admin sessions are currently live.
// The sweeper only runs while someone is looking at the dashboard, so
// an idle deployment never burns writes on expiry bookkeeping.
type SessionCounter interface {
	ActiveSessions() int
}

type Sweeper struct {
	store    BookingStore
	sessions SessionCounter
	log      *logger.Logger
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

func New(st BookingStore, sessions SessionCounter, log *logger.Logger, interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		store:    st,
		sessions: sessions,
		log:      log,
		interval: interval,
		grace:    grace,
		now:      time.Now,
	}
}

// Run ticks until ctx is canceled. Blocking; run it in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.sessions.ActiveSessions() == 0 {
		return
	}

	bookings := s.store.Snapshot()
	if len(bookings) == 0 {
		return
	}

	now := s.now()
	deadline := now.Add(-s.grace)
	expired := 0

	for _, b := range bookings {
		if b.Status.Effective() != model.StatusPending {
			continue
		}

		instant, err := catalog.SlotInstant(b.Date, b.Time)
		if err != nil {
			// An unreadable slot never ages out; leave it for the admin.
			continue
		}
		if !instant.Before(deadline) {
			continue
		}

		if err := s.store.UpdateStatus(ctx, b.ID, model.StatusExpired); err != nil {
			s.log.Error("Failed to expire booking", "id", b.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.log.Info("Expired stale bookings", "count", expired)
	}
}
