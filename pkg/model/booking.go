package model

import "time"

type Status string

const (
	StatusPending Status = "Pending"
	StatusSuccess Status = "Success"
	StatusExpired Status = "Expired"
)

// Effective maps an absent status to Pending. Records written by older
// clients may carry no status field at all.
func (s Status) Effective() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// Active reports whether the booking still occupies a seat. Only Expired
// bookings release their seat.
func (s Status) Active() bool {
	return s.Effective() != StatusExpired
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusExpired:
		return true
	}
	return false
}

// Booking is the sole persisted entity: one appointment request for a
// document-submission slot.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name" validate:"required,min=3"`
	Batch     string    `json:"batch,omitempty" bson:"batch,omitempty"`
	Mobile    string    `json:"mobile" bson:"mobile" validate:"required,len=10,inmobile"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Date      string    `json:"date" bson:"date" validate:"required,datewindow"`
	Time      string    `json:"time" bson:"time" validate:"required,slot"`
	Status    Status    `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=Pending Success Expired"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	// CreatedAt is a human-readable copy of Timestamp kept for display.
	// It carries no semantics; Timestamp is the ordering key.
	CreatedAt string `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
