package sweep

import (
	"context"
	"testing"
	"time"

	"ribobook/pkg/logger"
	"ribobook/pkg/model"
)

type mockBookingStore struct {
	snapshot []model.Booking
	updates  map[string]model.Status
}

func (m *mockBookingStore) Snapshot() []model.Booking {
	return m.snapshot
}

func (m *mockBookingStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if m.updates == nil {
		m.updates = make(map[string]model.Status)
	}
	m.updates[id] = status
	return nil
}

type mockSessions struct {
	active int
}

func (m *mockSessions) ActiveSessions() int {
	return m.active
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func newTestSweeper(st *mockBookingStore, sessions *mockSessions) *Sweeper {
	s := New(st, sessions, testLogger(), time.Minute, 30*time.Minute)
	// Clock fixed at 2026-02-10 12:00 local time.
	s.now = func() time.Time {
		return time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local)
	}
	return s
}

func TestSweep(t *testing.T) {
	tests := []struct {
		name        string
		booking     model.Booking
		wantExpired bool
	}{
		{
			name:        "pending past grace expires",
			booking:     model.Booking{ID: "b1", Status: model.StatusPending, Date: "2026-02-10", Time: "11:00 AM"},
			wantExpired: true,
		},
		{
			name:        "pending from yesterday expires",
			booking:     model.Booking{ID: "b2", Status: model.StatusPending, Date: "2026-02-09", Time: "10:00 PM"},
			wantExpired: true,
		},
		{
			name:        "blank status counts as pending",
			booking:     model.Booking{ID: "b3", Status: "", Date: "2026-02-10", Time: "11:00 AM"},
			wantExpired: true,
		},
		{
			name:    "pending inside grace survives",
			booking: model.Booking{ID: "b4", Status: model.StatusPending, Date: "2026-02-10", Time: "11:45 AM"},
		},
		{
			name:    "future pending survives",
			booking: model.Booking{ID: "b5", Status: model.StatusPending, Date: "2026-02-11", Time: "09:30 AM"},
		},
		{
			name:    "success is never expired",
			booking: model.Booking{ID: "b6", Status: model.StatusSuccess, Date: "2026-02-09", Time: "09:30 AM"},
		},
		{
			name:    "already expired is left alone",
			booking: model.Booking{ID: "b7", Status: model.StatusExpired, Date: "2026-02-09", Time: "09:30 AM"},
		},
		{
			name:    "unreadable slot survives",
			booking: model.Booking{ID: "b8", Status: model.StatusPending, Date: "2026-02-09", Time: "whenever"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockBookingStore{snapshot: []model.Booking{tt.booking}}
			s := newTestSweeper(st, &mockSessions{active: 1})

			s.sweep(context.Background())

			_, expired := st.updates[tt.booking.ID]
			if expired != tt.wantExpired {
				t.Errorf("expired = %v, want %v", expired, tt.wantExpired)
			}
			if expired && st.updates[tt.booking.ID] != model.StatusExpired {
				t.Errorf("expected Expired, got %q", st.updates[tt.booking.ID])
			}
		})
	}
}

func TestSweep_SkipsWithoutActiveSessions(t *testing.T) {
	st := &mockBookingStore{snapshot: []model.Booking{
		{ID: "b1", Status: model.StatusPending, Date: "2026-02-09", Time: "09:30 AM"},
	}}
	s := newTestSweeper(st, &mockSessions{active: 0})

	s.sweep(context.Background())

	if len(st.updates) != 0 {
		t.Errorf("sweep must be a no-op without live admin sessions, got %v", st.updates)
	}
}

func TestSweep_SkipsEmptySnapshot(t *testing.T) {
	st := &mockBookingStore{}
	s := newTestSweeper(st, &mockSessions{active: 1})

	s.sweep(context.Background())

	if len(st.updates) != 0 {
		t.Errorf("sweep over an empty snapshot must not write, got %v", st.updates)
	}
}
