// Package store owns the live in-memory mirror of the booking collection
// and mediates every mutation. The backing store is the single source of
// truth; the mirror is a cache refreshed by push notifications and is
// never written to directly. Mutations go through the write path and show
// up in the mirror only once the remote change feed confirms them.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"ribobook/internal/bookings/catalog"
	bookingserrors "ribobook/internal/bookings/errors"
	"ribobook/internal/bookings/events"
	"ribobook/internal/bookings/repository"
	apperrors "ribobook/pkg/errors"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"
)

// User-facing rejection messages, kept verbatim from the booking form.
const (
	DuplicateMobileMessage = "This mobile number is already booked! Please contact admin if you need to change it."
	SlotFullMessage        = "Sorry, this time slot is fully booked!"
	NetworkErrorMessage    = "network error"
)

const resubscribeDelay = 5 * time.Second

// createdAtLayout is the human-readable display form of the creation
// instant. Display-only; Timestamp is the ordering key.
const createdAtLayout = "02/01/2006, 03:04:05 PM"

type SlotAvailability struct {
	Slot      string `json:"slot"`
	SeatsLeft int    `json:"seats_left"`
	Past      bool   `json:"past"`
	Full      bool   `json:"full"`
}

type Store struct {
	repo      repository.BookingRepository
	publisher events.Publisher
	log       *logger.Logger
	capacity  int
	now       func() time.Time

	mu      sync.RWMutex
	mirror  []model.Booking
	loading bool

	subMu       sync.Mutex
	subscribers map[int]chan []model.Booking
	nextSubID   int
}

func New(repo repository.BookingRepository, publisher events.Publisher, log *logger.Logger, capacity int) *Store {
	return &Store{
		repo:        repo,
		publisher:   publisher,
		log:         log,
		capacity:    capacity,
		now:         time.Now,
		loading:     true,
		subscribers: make(map[int]chan []model.Booking),
	}
}

// Run keeps the standing subscription to the backing collection alive
// until ctx is canceled. Every remote change triggers a full re-read
// that replaces the mirror wholesale. Blocking; run it in a goroutine.
func (s *Store) Run(ctx context.Context) {
	for {
		if err := s.subscribe(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("Booking subscription interrupted, resubscribing",
				"error", err,
				"retry_in", resubscribeDelay,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

func (s *Store) subscribe(ctx context.Context) error {
	changes, err := s.repo.Watch(ctx)
	if err != nil {
		return err
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}

	for range changes {
		if err := s.refresh(ctx); err != nil {
			// A failed re-read keeps the previous mirror; the next
			// change signal retries.
			s.log.Error("Failed to refresh booking mirror", "error", err)
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return errors.New("change feed closed")
}

func (s *Store) refresh(ctx context.Context) error {
	bookings, err := s.repo.FetchAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mirror = bookings
	s.loading = false
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// Loading is true until the first snapshot has arrived.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot returns a copy of the current mirror, newest first.
func (s *Store) Snapshot() []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]model.Booking, len(s.mirror))
	copy(snapshot, s.mirror)
	return snapshot
}

// Subscribe returns a lazy, unbounded sequence of full mirror snapshots.
// Slow consumers only ever see the latest snapshot; intermediate ones are
// dropped. The returned func cancels the subscription and is safe to call
// more than once.
func (s *Store) Subscribe() (<-chan []model.Booking, func()) {
	ch := make(chan []model.Booking, 1)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	// Seed with the current snapshot so a late subscriber does not wait
	// for the next remote change. Latest-wins, same as broadcast: a
	// concurrent broadcast may have filled the buffer already, and its
	// snapshot is at least as fresh as this one.
	if !s.Loading() {
		select {
		case ch <- s.Snapshot():
		default:
		}
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) broadcast() {
	snapshot := s.Snapshot()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		// Latest snapshot wins: displace a stale pending one.
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// Create validates the request against the current local mirror and
// writes through on success, returning the new booking's id as the
// user's token. The mirror may lag the backing store, so two
// near-simultaneous submissions can both pass the checks; capacity and
// mobile uniqueness are best-effort, not guaranteed.
func (s *Store) Create(ctx context.Context, booking *model.Booking) (string, error) {
	s.mu.RLock()
	var duplicate bool
	var slotCount int
	for _, b := range s.mirror {
		if !b.Status.Active() {
			continue
		}
		if b.Mobile == booking.Mobile {
			duplicate = true
		}
		if b.Date == booking.Date && b.Time == booking.Time {
			slotCount++
		}
	}
	s.mu.RUnlock()

	if duplicate {
		return "", apperrors.Conflict(DuplicateMobileMessage)
	}
	if slotCount >= s.capacity {
		return "", apperrors.Conflict(SlotFullMessage)
	}

	now := s.now()
	booking.Status = model.StatusPending
	booking.Timestamp = now
	booking.CreatedAt = now.Format(createdAtLayout)

	if err := s.repo.Insert(ctx, booking); err != nil {
		s.log.Error("Failed to create booking",
			"mobile", booking.Mobile,
			"date", booking.Date,
			"time", booking.Time,
			"error", err,
		)
		return "", apperrors.Unavailable(NetworkErrorMessage, err)
	}

	s.log.Info("Booking created",
		"id", booking.ID,
		"date", booking.Date,
		"time", booking.Time,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:      events.EventCreated,
		BookingID: booking.ID,
		Booking:   booking,
		At:        now,
	})
	return booking.ID, nil
}

// UpdateStatus writes the new status through to the backing store. It
// does not judge the transition's legality; that is the caller's job.
func (s *Store) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !status.Valid() {
		return apperrors.InvalidInput("Unknown booking status")
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid booking ID format")
		default:
			s.log.Error("Failed to update booking status", "id", id, "status", status, "error", err)
			return apperrors.Unavailable(NetworkErrorMessage, err)
		}
	}

	s.log.Info("Booking status updated", "id", id, "status", status)
	s.publisher.Publish(ctx, events.Event{
		Type:      events.EventStatusChanged,
		BookingID: id,
		Status:    status,
		At:        s.now(),
	})
	return nil
}

// Remove deletes the booking. A blank id is a silent no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid booking ID format")
		default:
			s.log.Error("Failed to delete booking", "id", id, "error", err)
			return apperrors.Unavailable(NetworkErrorMessage, err)
		}
	}

	s.log.Info("Booking deleted", "id", id)
	s.publisher.Publish(ctx, events.Event{
		Type:      events.EventDeleted,
		BookingID: id,
		At:        s.now(),
	})
	return nil
}

// Availability reports, for every catalog slot on the given date, the
// seats left (active bookings only) and whether the slot already started.
func (s *Store) Availability(date string) []SlotAvailability {
	counts := make(map[string]int, len(catalog.Slots))

	s.mu.RLock()
	for _, b := range s.mirror {
		if b.Date == date && b.Status.Active() {
			counts[b.Time]++
		}
	}
	s.mu.RUnlock()

	now := s.now()
	availability := make([]SlotAvailability, 0, len(catalog.Slots))
	for _, slot := range catalog.Slots {
		seatsLeft := s.capacity - counts[slot]
		if seatsLeft < 0 {
			seatsLeft = 0
		}
		availability = append(availability, SlotAvailability{
			Slot:      slot,
			SeatsLeft: seatsLeft,
			Past:      catalog.IsPast(date, slot, now),
			Full:      counts[slot] >= s.capacity,
		})
	}
	return availability
}
