package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reserva/backend/internal/domain"
)

// AppointmentRepository is the persistence contract for the lifecycle service.
// Create must decide the duplicate-slot race at commit time: if another active
// appointment holds the same scheduled time, it returns ErrConflict.
type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	FindByNumber(ctx context.Context, number string) (domain.Appointment, error)
	ExistsActiveAt(ctx context.Context, scheduledAt time.Time, statuses []domain.Status) (bool, error)
	List(ctx context.Context) ([]domain.Appointment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	ListByStatus(ctx context.Context, statuses []domain.Status, limit, offset int) ([]domain.Appointment, error)
}
