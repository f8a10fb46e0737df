package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	bookingserrors "ribobook/internal/bookings/errors"
	"ribobook/pkg/model"

	"github.com/google/uuid"
)

// fileBookingRepository is the superseded local-persistence variant: the
// whole collection lives as one flat JSON array in a single file, read at
// startup and rewritten on every mutation. Change notifications are
// in-process only. Useful for development and single-node deployments
// without a MongoDB.
type fileBookingRepository struct {
	path string

	mu       sync.Mutex
	watchers map[int]chan struct{}
	nextID   int
}

func NewFileBookingRepository(path string) (BookingRepository, error) {
	repo := &fileBookingRepository{
		path:     path,
		watchers: make(map[int]chan struct{}),
	}

	// Fail fast on an unreadable or corrupt file rather than on the
	// first booking.
	if _, err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *fileBookingRepository) load() ([]model.Booking, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read booking file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var bookings []model.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode booking file: %w", err)
	}
	return bookings, nil
}

func (r *fileBookingRepository) save(bookings []model.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create booking file directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write booking file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace booking file: %w", err)
	}
	return nil
}

func (r *fileBookingRepository) notifyLocked() {
	for _, ch := range r.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *fileBookingRepository) Insert(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return err
	}

	booking.ID = uuid.NewString()
	bookings = append(bookings, *booking)
	if err := r.save(bookings); err != nil {
		return err
	}

	r.notifyLocked()
	return nil
}

func (r *fileBookingRepository) SetStatus(_ context.Context, id string, status model.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return err
	}

	for i := range bookings {
		if bookings[i].ID == id {
			bookings[i].Status = status
			if err := r.save(bookings); err != nil {
				return err
			}
			r.notifyLocked()
			return nil
		}
	}
	return bookingserrors.ErrNotFound
}

func (r *fileBookingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return err
	}

	for i := range bookings {
		if bookings[i].ID == id {
			bookings = append(bookings[:i], bookings[i+1:]...)
			if err := r.save(bookings); err != nil {
				return err
			}
			r.notifyLocked()
			return nil
		}
	}
	return bookingserrors.ErrNotFound
}

func (r *fileBookingRepository) FetchAll(_ context.Context) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Timestamp.After(bookings[j].Timestamp)
	})
	return bookings, nil
}

func (r *fileBookingRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.watchers[id] = ch
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
