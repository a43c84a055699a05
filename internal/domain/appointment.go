package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

// ActiveStatuses holds the slot and may still be canceled; TerminalStatuses
// admit no further transitions.
var (
	ActiveStatuses   = []Status{StatusRequested, StatusConfirmed}
	TerminalStatuses = []Status{StatusCanceled, StatusCompleted, StatusNoShow}
)

func (s Status) Active() bool {
	return s == StatusRequested || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCanceled || s == StatusCompleted || s == StatusNoShow
}

func ParseStatus(text string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(text))) {
	case StatusRequested:
		return StatusRequested, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCanceled:
		return StatusCanceled, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusNoShow:
		return StatusNoShow, true
	}
	return "", false
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID                uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	AppointmentNumber string    `bun:"appointment_number,notnull" json:"appointment_number"`
	PatientName       string    `bun:"patient_name,notnull" json:"patient_name"`
	DoctorID          *int64    `bun:"doctor_id" json:"doctor_id,omitempty"`
	ScheduledAt       time.Time `bun:"scheduled_at,notnull" json:"scheduled_at"`
	PartySize         int       `bun:"party_size,notnull" json:"party_size"`
	Status            Status    `bun:"status,notnull" json:"status"`
	CancelReason      *string   `bun:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// NewAppointmentNumber returns a human-facing code like RSV-3F0A9C21D4B7.
func NewAppointmentNumber() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "RSV-" + strings.ToUpper(raw[:12])
}
