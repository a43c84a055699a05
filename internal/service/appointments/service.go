package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"reserva/backend/internal/domain"
	"reserva/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// StateError means the requested transition is illegal for the appointment's
// current lifecycle state.
type StateError struct {
	msg string
}

func (e *StateError) Error() string {
	return e.msg
}

func stateError(msg string) error {
	return &StateError{msg: msg}
}

const defaultCancelReason = "canceled by user request"

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type Service struct {
	repo store.AppointmentRepository
	now  func() time.Time
}

func NewService(repo store.AppointmentRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	PatientName string
	ScheduledAt string
	PartySize   *int
	DoctorID    *int64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	name := strings.TrimSpace(in.PatientName)
	if name == "" {
		return domain.Appointment{}, validationError("patient name is required")
	}
	timeText := strings.TrimSpace(in.ScheduledAt)
	if timeText == "" {
		return domain.Appointment{}, validationError("scheduled time is required")
	}
	if in.PartySize == nil || *in.PartySize < 1 {
		return domain.Appointment{}, validationError("party size must be at least 1")
	}

	scheduledAt, err := parseScheduledAt(timeText)
	if err != nil {
		return domain.Appointment{}, validationError("invalid scheduled time format, use ISO-8601")
	}
	if !scheduledAt.After(s.now().UTC()) {
		return domain.Appointment{}, validationError("scheduled time must be in the future")
	}

	exists, err := s.repo.ExistsActiveAt(ctx, scheduledAt, domain.ActiveStatuses)
	if err != nil {
		return domain.Appointment{}, err
	}
	if exists {
		return domain.Appointment{}, store.ErrConflict
	}

	appt := domain.Appointment{
		AppointmentNumber: domain.NewAppointmentNumber(),
		PatientName:       name,
		DoctorID:          in.DoctorID,
		ScheduledAt:       scheduledAt,
		PartySize:         *in.PartySize,
		Status:            domain.StatusRequested,
	}

	// The repo re-checks the slot at commit, so a concurrent winner still
	// surfaces as store.ErrConflict here.
	return s.repo.Create(ctx, appt)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (domain.Appointment, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Appointment{}, validationError("appointment number is required")
	}
	return s.repo.FindByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	from = from.UTC()
	to = to.UTC()
	if to.Equal(from) || to.Before(from) {
		return nil, validationError("to must be after from")
	}
	return s.repo.ListBetween(ctx, from, to)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.Status, page, pageSize int) ([]domain.Appointment, error) {
	parsed, ok := domain.ParseStatus(string(status))
	if !ok {
		return nil, validationError("unknown status")
	}
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, validationError("page must be at least 1")
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return nil, validationError("page size out of range")
	}
	return s.repo.ListByStatus(ctx, []domain.Status{parsed}, pageSize, (page-1)*pageSize)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment id is required")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}

	if appt.Status.Terminal() {
		return domain.Appointment{}, stateError("appointment already finalized, cannot cancel")
	}
	if !appt.Status.Active() {
		return domain.Appointment{}, stateError("cannot cancel appointment in current state")
	}

	reason := defaultCancelReason
	appt.Status = domain.StatusCanceled
	appt.CancelReason = &reason
	appt.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, appt)
}

// parseScheduledAt accepts RFC 3339 or the zone-less ISO form the original
// API took; zone-less input is read as UTC.
func parseScheduledAt(text string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", text)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
