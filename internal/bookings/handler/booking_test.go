package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ribobook/internal/bookings/store"
	"ribobook/internal/bookings/validator"
	apperrors "ribobook/pkg/errors"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingStore struct {
	createFunc       func(ctx context.Context, booking *model.Booking) (string, error)
	loadingFunc      func() bool
	availabilityFunc func(date string) []store.SlotAvailability
}

func (m *mockBookingStore) Create(ctx context.Context, booking *model.Booking) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return "token-1", nil
}

func (m *mockBookingStore) Loading() bool {
	if m.loadingFunc != nil {
		return m.loadingFunc()
	}
	return false
}

func (m *mockBookingStore) Availability(date string) []store.SlotAvailability {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(date)
	}
	return nil
}

func newTestHandler(st *mockBookingStore) *BookingHandler {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	now := func() time.Time {
		return time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local)
	}
	v := validator.NewBookingValidator(log, "2026-03-08", now)
	return NewBookingHandler(st, v, log, 4, "2026-03-08", "917999895002")
}

func newRouter(h *BookingHandler) *httprouter.Router {
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

const validBookingBody = `{
	"name": "Asha Verma",
	"batch": "Target 2026",
	"mobile": "9998887776",
	"email": "asha@example.com",
	"date": "2026-02-15",
	"time": "10:00 AM"
}`

func TestCreate(t *testing.T) {
	t.Run("valid booking returns token", func(t *testing.T) {
		var captured *model.Booking
		st := &mockBookingStore{
			createFunc: func(ctx context.Context, booking *model.Booking) (string, error) {
				captured = booking
				return "token-1", nil
			},
		}
		router := newRouter(newTestHandler(st))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(validBookingBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured == nil {
			t.Fatalf("store was never called")
		}

		var resp struct {
			Data CreatedResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if resp.Data.Token != "token-1" {
			t.Errorf("expected token-1, got %q", resp.Data.Token)
		}
	})

	t.Run("client-supplied id and status are discarded", func(t *testing.T) {
		var captured *model.Booking
		st := &mockBookingStore{
			createFunc: func(ctx context.Context, booking *model.Booking) (string, error) {
				captured = booking
				return "token-1", nil
			},
		}
		router := newRouter(newTestHandler(st))

		body := `{
			"id": "forged",
			"status": "Success",
			"name": "Asha Verma",
			"mobile": "9998887776",
			"email": "asha@example.com",
			"date": "2026-02-15",
			"time": "10:00 AM"
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.ID != "" || captured.Status != "" {
			t.Errorf("id/status must be stripped before the store, got id=%q status=%q", captured.ID, captured.Status)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newRouter(newTestHandler(&mockBookingStore{}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("validation failure carries field messages", func(t *testing.T) {
		router := newRouter(newTestHandler(&mockBookingStore{}))

		body := strings.Replace(validBookingBody, "9998887776", "12345", 1)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if _, ok := resp.Details["Mobile"]; !ok {
			t.Errorf("expected a Mobile detail, got %v", resp.Details)
		}
	})

	t.Run("store conflict passes through", func(t *testing.T) {
		st := &mockBookingStore{
			createFunc: func(ctx context.Context, booking *model.Booking) (string, error) {
				return "", apperrors.Conflict(store.SlotFullMessage)
			},
		}
		router := newRouter(newTestHandler(st))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(validBookingBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), store.SlotFullMessage) {
			t.Errorf("expected slot-full message, got %s", rec.Body.String())
		}
	})

	t.Run("input is trimmed before validation", func(t *testing.T) {
		var captured *model.Booking
		st := &mockBookingStore{
			createFunc: func(ctx context.Context, booking *model.Booking) (string, error) {
				captured = booking
				return "token-1", nil
			},
		}
		router := newRouter(newTestHandler(st))

		body := `{
			"name": "  Asha   Verma  ",
			"mobile": " 9998887776 ",
			"email": " ASHA@Example.COM ",
			"date": " 2026-02-15 ",
			"time": " 10:00 AM "
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Name != "Asha Verma" {
			t.Errorf("name not normalized: %q", captured.Name)
		}
		if captured.Email != "asha@example.com" {
			t.Errorf("email not normalized: %q", captured.Email)
		}
		if captured.Mobile != "9998887776" {
			t.Errorf("mobile not trimmed: %q", captured.Mobile)
		}
	})
}

func TestSlots(t *testing.T) {
	t.Run("missing date", func(t *testing.T) {
		router := newRouter(newTestHandler(&mockBookingStore{}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		router := newRouter(newTestHandler(&mockBookingStore{}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?date=soon", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("reports availability and loading", func(t *testing.T) {
		st := &mockBookingStore{
			loadingFunc: func() bool { return true },
			availabilityFunc: func(date string) []store.SlotAvailability {
				return []store.SlotAvailability{
					{Slot: "09:30 AM", SeatsLeft: 4},
				}
			},
		}
		router := newRouter(newTestHandler(st))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?date=2026-02-15", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Data SlotsResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if !resp.Data.Loading {
			t.Errorf("expected loading true")
		}
		if len(resp.Data.Slots) != 1 || resp.Data.Slots[0].Slot != "09:30 AM" {
			t.Errorf("unexpected slots: %+v", resp.Data.Slots)
		}
	})
}

func TestInfo(t *testing.T) {
	router := newRouter(newTestHandler(&mockBookingStore{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data InfoResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Data.SupportLink != "https://wa.me/917999895002" {
		t.Errorf("unexpected support link: %q", resp.Data.SupportLink)
	}
	if resp.Data.SlotCapacity != 4 {
		t.Errorf("unexpected capacity: %d", resp.Data.SlotCapacity)
	}
	if len(resp.Data.Slots) != 26 {
		t.Errorf("expected 26 slots, got %d", len(resp.Data.Slots))
	}
	if resp.Data.LastBookingDate != "2026-03-08" {
		t.Errorf("unexpected cutoff: %q", resp.Data.LastBookingDate)
	}
}
