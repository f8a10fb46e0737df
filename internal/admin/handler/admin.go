package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ribobook/internal/admin/auth"
	"ribobook/internal/bookings/store"
	apperrors "ribobook/pkg/errors"
	httputil "ribobook/pkg/http"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const streamKeepAlive = 30 * time.Second

// BookingStore is the slice of the booking store the dashboard uses.
type BookingStore interface {
	Snapshot() []model.Booking
	Loading() bool
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	Remove(ctx context.Context, id string) error
	Subscribe() (<-chan []model.Booking, func())
}

type LoginRequest struct {
	Passphrase string `json:"passphrase"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type StatusUpdateRequest struct {
	Status model.Status `json:"status"`
}

type BookingsResponse struct {
	Loading  bool            `json:"loading"`
	Bookings []model.Booking `json:"bookings"`
}

type AdminHandler struct {
	store         BookingStore
	authenticator auth.Authenticator
	sessions      *auth.SessionManager
	log           *logger.Logger
}

func NewAdminHandler(st BookingStore, authenticator auth.Authenticator, sessions *auth.SessionManager, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		store:         st,
		authenticator: authenticator,
		sessions:      sessions,
		log:           log,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Login", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.authenticator.Authenticate(req.Passphrase); err != nil {
		h.log.Info("Admin login rejected", "remote_addr", r.RemoteAddr)
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	token := h.sessions.Open()
	if err := httputil.WriteSuccess(w, LoginResponse{Token: token}); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.sessions.Close(sessionToken(r))
	httputil.WriteNoContent(w)
}

func (h *AdminHandler) GetBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	response := BookingsResponse{
		Loading:  h.store.Loading(),
		Bookings: store.SortForDisplay(h.store.Snapshot()),
	}
	if err := httputil.WriteSuccess(w, response); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.checkTransition(id, req.Status); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.store.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// checkTransition enforces the dashboard's status rules: the admin only
// toggles a booking between Pending and Success, and an Expired booking
// stays expired.
func (h *AdminHandler) checkTransition(id string, target model.Status) error {
	if target != model.StatusPending && target != model.StatusSuccess {
		return apperrors.InvalidInput(fmt.Sprintf("status must be %q or %q", model.StatusPending, model.StatusSuccess))
	}

	for _, b := range h.store.Snapshot() {
		if b.ID != id {
			continue
		}
		if b.Status.Effective() == model.StatusExpired {
			return apperrors.Conflict("An expired booking cannot be reactivated")
		}
		return nil
	}
	return apperrors.NotFoundWithID("Booking", id)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.store.Remove(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// Stream pushes the sorted booking list to the dashboard as
// server-sent events. The first event fires as soon as a snapshot is
// available; afterwards one event per remote change.
func (h *AdminHandler) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Streaming is not supported", nil)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Stream", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots, cancel := h.store.Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			payload, err := json.Marshal(BookingsResponse{
				Loading:  false,
				Bookings: store.SortForDisplay(snapshot),
			})
			if err != nil {
				h.log.Error("failed to encode booking snapshot", "handler", "Stream", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: bookings\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// RequireSession rejects requests that do not carry a live session
// token. The token rides in the Authorization header, or in the
// "token" query parameter for EventSource clients that cannot set
// headers.
func (h *AdminHandler) RequireSession(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !h.sessions.Validate(sessionToken(r)) {
			if writeErr := httputil.WriteError(w, apperrors.Unauthorized("A valid admin session is required")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "RequireSession", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		next(w, r, ps)
	}
}

func sessionToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return r.URL.Query().Get("token")
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/admin/login", h.Login)
	router.POST("/api/v1/admin/logout", h.RequireSession(h.Logout))
	router.GET("/api/v1/admin/bookings", h.RequireSession(h.GetBookings))
	router.PATCH("/api/v1/admin/bookings/id/:id", h.RequireSession(h.UpdateStatus))
	router.DELETE("/api/v1/admin/bookings/id/:id", h.RequireSession(h.Delete))
	router.GET("/api/v1/admin/stream", h.RequireSession(h.Stream))
}
