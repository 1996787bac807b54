package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// timeLayout is the only accepted slot time format.
const timeLayout = "15:04"

// validSlotTime accepts zero-padded HH:MM only; time.Parse alone would
// let a single-digit hour through.
func validSlotTime(s string) bool {
	if len(s) != len(timeLayout) {
		return false
	}
	_, err := time.Parse(timeLayout, s)
	return err == nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientName == "" {
		return apperr.New(apperr.CodeBadRequest, i18n.Message{
			Ar: "اسم المريض مطلوب",
			En: "patient name is required",
		})
	}
	if !validSlotTime(a.AppointmentTime) {
		return apperr.New(apperr.CodeFormat, i18n.Msgf(
			"صيغة وقت الموعد غير صحيحة: %s",
			"invalid appointment time format: %s",
			a.AppointmentTime,
		))
	}
	if a.AppointmentDate.IsZero() {
		return apperr.New(apperr.CodeBadRequest, i18n.Message{
			Ar: "تاريخ الموعد مطلوب",
			En: "appointment date is required",
		})
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment", id.String())
		}
		return nil, fmt.Errorf("load appointment %s: %w", id, err)
	}
	return a, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

// Cancel ends an appointment with an explicit reason. Already-final
// appointments are rejected.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !a.Status.Active() {
		return apperr.New(apperr.CodeLogic, i18n.Msgf(
			"لا يمكن إلغاء موعد حالته %s",
			"cannot cancel an appointment in status %s",
			a.Status,
		))
	}
	if reason == "" {
		reason = "cancelled_by_staff"
	}
	return s.repo.CancelWithReason(ctx, id, reason)
}
