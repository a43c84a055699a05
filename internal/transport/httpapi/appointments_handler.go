package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reserva/backend/internal/domain"
	"reserva/backend/internal/service/appointments"
	"reserva/backend/internal/store"
)

type AppointmentsHandler struct {
	svc appointmentsService
	log *slog.Logger
}

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	GetByNumber(ctx context.Context, number string) (domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	ListByStatus(ctx context.Context, status domain.Status, page, pageSize int) ([]domain.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
}

func NewAppointmentsHandler(svc appointmentsService, log *slog.Logger) *AppointmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsHandler{
		svc: svc,
		log: log.With(slog.String("component", "httpapi.appointments")),
	}
}

func (h *AppointmentsHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/appointments")
	{
		api.POST("", h.create)
		api.GET("", h.list)
		api.GET("/:id", h.get)
		api.GET("/number/:number", h.getByNumber)
		api.PATCH("/:id/cancel", h.cancel)
	}
}

type CreateAppointmentRequest struct {
	PatientName string `json:"patient_name"`
	ScheduledAt string `json:"scheduled_at"`
	PartySize   *int   `json:"party_size"`
	DoctorID    *int64 `json:"doctor_id"`
}

func (h *AppointmentsHandler) create(c *gin.Context) {
	log := h.log.With(slog.String("handler", "create"))

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request body", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is required"})
		return
	}

	appt, err := h.svc.Create(c.Request.Context(), appointments.CreateInput{
		PatientName: req.PatientName,
		ScheduledAt: req.ScheduledAt,
		PartySize:   req.PartySize,
		DoctorID:    req.DoctorID,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Info("appointment create conflict", slog.String("scheduled_at", req.ScheduledAt))
			c.JSON(http.StatusConflict, gin.H{"error": "an active appointment already exists at this time"})
			return
		}
		var vErr *appointments.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("invalid request", slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		log.Error("appointment create failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("appointment_number", appt.AppointmentNumber),
		slog.Time("scheduled_at", appt.ScheduledAt),
	)
	c.JSON(http.StatusCreated, appt)
}

func (h *AppointmentsHandler) get(c *gin.Context) {
	log := h.log.With(slog.String("handler", "get"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointment id must be a UUID"})
		return
	}

	appt, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, log, err, id)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentsHandler) getByNumber(c *gin.Context) {
	log := h.log.With(slog.String("handler", "get_by_number"))

	appt, err := h.svc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("appointment not found", slog.String("appointment_number", c.Param("number")))
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
			return
		}
		var vErr *appointments.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("invalid request", slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		log.Error("appointment lookup failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentsHandler) list(c *gin.Context) {
	log := h.log.With(slog.String("handler", "list"))

	var (
		appts []domain.Appointment
		err   error
	)
	switch {
	case c.Query("status") != "":
		page, perr := queryInt(c, "page")
		if perr != nil {
			log.Warn("invalid request", slog.String("reason", "bad_page"))
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		pageSize, perr := queryInt(c, "page_size")
		if perr != nil {
			log.Warn("invalid request", slog.String("reason", "bad_page_size"))
			c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be an integer"})
			return
		}
		appts, err = h.svc.ListByStatus(c.Request.Context(), domain.Status(c.Query("status")), page, pageSize)
	case c.Query("from") != "" || c.Query("to") != "":
		from, perr := time.Parse(time.RFC3339, c.Query("from"))
		if perr != nil {
			log.Warn("invalid request", slog.String("reason", "bad_from"))
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be an RFC 3339 timestamp"})
			return
		}
		to, perr := time.Parse(time.RFC3339, c.Query("to"))
		if perr != nil {
			log.Warn("invalid request", slog.String("reason", "bad_to"))
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be an RFC 3339 timestamp"})
			return
		}
		appts, err = h.svc.ListBetween(c.Request.Context(), from, to)
	default:
		appts, err = h.svc.List(c.Request.Context())
	}
	if err != nil {
		var vErr *appointments.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("invalid request", slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		log.Error("appointments list failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if appts == nil {
		appts = []domain.Appointment{}
	}
	log.Debug("appointments listed", slog.Int("count", len(appts)))
	c.JSON(http.StatusOK, appts)
}

func (h *AppointmentsHandler) cancel(c *gin.Context) {
	log := h.log.With(slog.String("handler", "cancel"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointment id must be a UUID"})
		return
	}

	appt, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		var sErr *appointments.StateError
		if errors.As(err, &sErr) {
			log.Info("appointment cancel rejected", slog.String("appointment_id", id.String()), slog.Any("err", err))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": sErr.Error()})
			return
		}
		h.respondLookupError(c, log, err, id)
		return
	}

	log.Info("appointment canceled", slog.String("appointment_id", appt.ID.String()))
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentsHandler) respondLookupError(c *gin.Context, log *slog.Logger, err error, id uuid.UUID) {
	if errors.Is(err, store.ErrNotFound) {
		log.Info("appointment not found", slog.String("appointment_id", id.String()))
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		return
	}
	var vErr *appointments.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", slog.Any("err", err), slog.String("appointment_id", id.String()))
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		return
	}
	log.Error("appointment lookup failed", slog.Any("err", err), slog.String("appointment_id", id.String()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
