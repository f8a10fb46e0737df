package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ribobook/internal/bookings/catalog"
	"ribobook/internal/bookings/store"
	"ribobook/internal/bookings/validator"
	apperrors "ribobook/pkg/errors"
	httputil "ribobook/pkg/http"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"
	"ribobook/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

// InfoResponse is the static booking-page metadata the client renders
// before any slot data arrives.
type InfoResponse struct {
	Slots           []string `json:"slots"`
	SlotCapacity    int      `json:"slot_capacity"`
	LastBookingDate string   `json:"last_booking_date"`
	SupportPhone    string   `json:"support_phone"`
	SupportLink     string   `json:"support_link"`
}

type SlotsResponse struct {
	Date    string                   `json:"date"`
	Loading bool                     `json:"loading"`
	Slots   []store.SlotAvailability `json:"slots"`
}

type CreatedResponse struct {
	Token string `json:"token"`
}

// BookingStore is the slice of the booking store the public API uses.
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) (string, error)
	Loading() bool
	Availability(date string) []store.SlotAvailability
}

type BookingHandler struct {
	store     BookingStore
	validator *validator.BookingValidator
	log       *logger.Logger

	capacity     int
	cutoffDate   string
	supportPhone string
}

func NewBookingHandler(st BookingStore, v *validator.BookingValidator, log *logger.Logger, capacity int, cutoffDate, supportPhone string) *BookingHandler {
	return &BookingHandler{
		store:        st,
		validator:    v,
		log:          log,
		capacity:     capacity,
		cutoffDate:   cutoffDate,
		supportPhone: supportPhone,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking.ID = ""
	booking.Name = sanitizer.NormalizeName(booking.Name)
	booking.Batch = sanitizer.NormalizeBatch(booking.Batch)
	booking.Mobile = sanitizer.NormalizeMobile(booking.Mobile)
	booking.Email = sanitizer.NormalizeEmail(booking.Email)
	booking.Date = sanitizer.TrimAndNormalize(booking.Date)
	booking.Time = sanitizer.TrimAndNormalize(booking.Time)
	booking.Status = ""

	if err := h.validator.Validate(&booking); err != nil {
		var verrs validator.ValidationErrors
		appErr := apperrors.AsAppError(err)
		if ok := asValidationErrors(err, &verrs); ok {
			appErr = apperrors.Validation("Please fix the highlighted fields.", verrs.Fields())
		}
		if writeErr := httputil.WriteError(w, appErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	token, err := h.store.Create(r.Context(), &booking)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, CreatedResponse{Token: token}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := sanitizer.TrimAndNormalize(r.URL.Query().Get("date"))
	if date == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("The 'date' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if _, err := time.Parse(catalog.DateLayout, date); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid date %q, must be YYYY-MM-DD", date))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	response := SlotsResponse{
		Date:    date,
		Loading: h.store.Loading(),
		Slots:   h.store.Availability(date),
	}
	if err := httputil.WriteSuccess(w, response); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Info(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	response := InfoResponse{
		Slots:           catalog.Slots,
		SlotCapacity:    h.capacity,
		LastBookingDate: h.cutoffDate,
		SupportPhone:    h.supportPhone,
		SupportLink:     fmt.Sprintf("https://wa.me/%s", h.supportPhone),
	}
	if err := httputil.WriteSuccess(w, response); err != nil {
		h.log.Error("failed to write success response", "handler", "Info", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/slots", h.Slots)
	router.GET("/api/v1/info", h.Info)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
