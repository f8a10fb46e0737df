package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ribobook/internal/bookings/catalog"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Indian mobile numbers: ten digits, first digit 6-9.
var mobileRegex = regexp.MustCompile(`^[6-9]\d{9}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields maps field name to user-facing message, the shape the form
// renders inline.
func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

// NewBookingValidator wires the custom tags. cutoffDate is the last
// bookable ISO date; now supplies the lower bound of the window.
func NewBookingValidator(log *logger.Logger, cutoffDate string, now func() time.Time) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("inmobile", validateMobile); err != nil {
		log.Fatal("Failed to register 'inmobile' validator", "error", err)
	}
	if err := v.RegisterValidation("slot", validateSlot); err != nil {
		log.Fatal("Failed to register 'slot' validator", "error", err)
	}
	if err := v.RegisterValidation("datewindow", dateWindow(cutoffDate, now)); err != nil {
		log.Fatal("Failed to register 'datewindow' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateMobile(fl validator.FieldLevel) bool {
	return mobileRegex.MatchString(fl.Field().String())
}

func validateSlot(fl validator.FieldLevel) bool {
	return catalog.Contains(fl.Field().String())
}

// dateWindow accepts ISO dates in the inclusive range [today, cutoff].
// ISO date strings compare correctly as plain strings, which is how the
// bounds were enforced at the input widget.
func dateWindow(cutoffDate string, now func() time.Time) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if _, err := time.Parse(catalog.DateLayout, value); err != nil {
			return false
		}
		today := now().Format(catalog.DateLayout)
		return value >= today && value <= cutoffDate
	}
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Field() {
		case "Name":
			switch err.Tag() {
			case "required":
				message = "Name is required."
			case "min":
				message = "Name is too short."
			}
		case "Mobile":
			switch err.Tag() {
			case "required":
				message = "Mobile number is required."
			case "len":
				message = "Must be exactly 10 digits."
			case "inmobile":
				message = "Invalid Number! Must start with 6-9."
			}
		case "Email":
			switch err.Tag() {
			case "required":
				message = "Email is required."
			case "email":
				message = "Invalid email address."
			}
		case "Date":
			switch err.Tag() {
			case "required":
				message = "Date is required."
			case "datewindow":
				message = "Date must be between today and the last booking date."
			}
		case "Time":
			switch err.Tag() {
			case "required":
				message = "Time slot is required."
			case "slot":
				message = "Please pick one of the offered time slots."
			}
		default:
			if err.Tag() == "oneof" {
				message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
			}
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
