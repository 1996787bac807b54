package workinghours

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shifa-health/shifa/internal/domain/appointment"
	"github.com/shifa-health/shifa/internal/domain/audit"
	"github.com/shifa-health/shifa/internal/domain/directory"
	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
	"github.com/shifa-health/shifa/internal/platform/metrics"
	"github.com/shifa-health/shifa/internal/platform/notification"
)

// Strategy selects how reconciliation treats a conflicting appointment.
type Strategy string

const (
	// StrategyReschedule cancels the appointment and stamps it as
	// needing a new slot. Slot search is a staff follow-up, not an
	// automatic action.
	StrategyReschedule Strategy = "reschedule"
	// StrategyNotify leaves the appointment untouched and only tells
	// the patient about the change.
	StrategyNotify Strategy = "notify"
	// StrategyCancel cancels the appointment outright.
	StrategyCancel Strategy = "cancel"
)

func (s Strategy) valid() bool {
	return s == StrategyReschedule || s == StrategyNotify || s == StrategyCancel
}

// ParentResolver follows the hierarchy edge upward.
type ParentResolver interface {
	ResolveParent(ctx context.Context, et directory.EntityType, id uuid.UUID) (*directory.ParentRef, error)
}

// TxRunner provides the atomic unit for persist-detect-resolve.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AppointmentStore is the slice of the appointment repository the
// reconciliation pipeline touches.
type AppointmentStore interface {
	ListFutureActiveByEntity(ctx context.Context, et directory.EntityType, id uuid.UUID, from time.Time) ([]*appointment.Appointment, error)
	CancelWithReason(ctx context.Context, id uuid.UUID, reason string) error
	MarkForRescheduling(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}

// ScheduleCache caches per-entity schedule reads.
type ScheduleCache interface {
	Get(ctx context.Context, entityType, entityID string, dest any) bool
	Set(ctx context.Context, entityType, entityID string, v any)
	Invalidate(ctx context.Context, entityType, entityID string)
}

// Notifier delivers a templated message. Failures are the caller's to
// log; they never abort reconciliation.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateID string, lang i18n.Language, data map[string]string, recipient string) (*notification.Notification, error)
}

// AuditRecorder persists an audit event, inside the ambient transaction
// when one is carried in the context.
type AuditRecorder interface {
	Record(ctx context.Context, e *audit.Event) error
}

// ValidationError aggregates every per-day failure of a submission.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schedule validation failed with %d errors", len(e.Result.Errors))
}

// ResolvedAppointment is the per-appointment detail in a reconciliation
// report.
type ResolvedAppointment struct {
	AppointmentID   uuid.UUID      `json:"appointment_id"`
	PatientName     string         `json:"patient_name"`
	AppointmentDate time.Time      `json:"appointment_date"`
	AppointmentTime string         `json:"appointment_time"`
	ServiceName     string         `json:"service_name"`
	Action          Strategy       `json:"action"`
	ConflictReason  ConflictReason `json:"conflict_reason"`
	Message         i18n.Message   `json:"message"`
}

// ReconciliationResult is the outcome of a schedule update.
type ReconciliationResult struct {
	WorkingHours                      []StoredEntry         `json:"working_hours"`
	AppointmentsRescheduled           int                   `json:"appointments_rescheduled"`
	AppointmentsMarkedForRescheduling int                   `json:"appointments_marked_for_rescheduling"`
	AppointmentsCancelled             int                   `json:"appointments_cancelled"`
	NotificationsSent                 int                   `json:"notifications_sent"`
	RescheduledAppointments           []ResolvedAppointment `json:"rescheduled_appointments"`
}

// ConflictCheck is the pre-flight conflict report.
type ConflictCheck struct {
	HasConflicts         bool       `json:"has_conflicts"`
	Conflicts            []Conflict `json:"conflicts"`
	AffectedAppointments int        `json:"affected_appointments"`
	RequiresRescheduling bool       `json:"requires_rescheduling"`
}

// Suggestion is a parent-derived candidate schedule.
type Suggestion struct {
	SuggestedSchedule []ScheduleEntry `json:"suggested_schedule"`
	Source            string          `json:"source"`
	CanModify         bool            `json:"can_modify"`
}

type Service struct {
	repo     Repository
	resolver ParentResolver
	appts    AppointmentStore
	tx       TxRunner
	cache    ScheduleCache
	notifier Notifier
	auditor  AuditRecorder
	logger   zerolog.Logger

	// now is swappable for deterministic conflict windows in tests.
	now func() time.Time
}

func NewService(repo Repository, resolver ParentResolver, appts AppointmentStore, tx TxRunner,
	cache ScheduleCache, notifier Notifier, auditor AuditRecorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		appts:    appts,
		tx:       tx,
		cache:    cache,
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// today is the earliest date conflict detection looks at.
func (s *Service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// GetSchedule returns the entity's stored schedule, serving repeated
// reads from the cache.
func (s *Service) GetSchedule(ctx context.Context, et directory.EntityType, id uuid.UUID) ([]StoredEntry, error) {
	var cached []StoredEntry
	if s.cache.Get(ctx, string(et), id.String(), &cached) {
		metrics.IncCacheHit()
		return cached, nil
	}
	metrics.IncCacheMiss()

	entries, err := s.repo.GetForEntity(ctx, et, id)
	if err != nil {
		return nil, fmt.Errorf("load schedule for %s %s: %w", et, id, err)
	}
	if len(entries) > 0 {
		s.cache.Set(ctx, string(et), id.String(), entries)
	}
	return entries, nil
}

// ValidateSchedule runs format and containment checks without
// persisting anything.
func (s *Service) ValidateSchedule(ctx context.Context, et directory.EntityType, id uuid.UUID, schedule []ScheduleEntry) (ValidationResult, error) {
	result := ValidateSchedule(schedule)
	if !result.IsValid {
		return result, nil
	}
	return s.checkParentContainment(ctx, et, id, schedule)
}

func (s *Service) checkParentContainment(ctx context.Context, et directory.EntityType, id uuid.UUID, schedule []ScheduleEntry) (ValidationResult, error) {
	parent, err := s.resolver.ResolveParent(ctx, et, id)
	if err != nil {
		return ValidationResult{}, err
	}
	if parent == nil {
		return ValidationResult{IsValid: true}, nil
	}
	parentEntries, err := s.repo.GetForEntity(ctx, parent.EntityType, parent.EntityID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load parent schedule for %s %s: %w", parent.EntityType, parent.EntityID, err)
	}
	return CheckContainment(schedule, plainEntries(parentEntries)), nil
}

// canModifySuggestion reports whether any of the caller's roles may
// edit away from the suggestion.
func canModifySuggestion(roles []string) bool {
	for _, r := range roles {
		if r == "admin" || r == "manager" {
			return true
		}
	}
	return false
}

// SuggestSchedule builds a candidate schedule from the parent entity's
// stored hours. Only managing roles may edit away from the suggestion.
func (s *Service) SuggestSchedule(ctx context.Context, roles []string, parentType directory.EntityType, parentID uuid.UUID) (*Suggestion, error) {
	parentEntries, err := s.repo.GetForEntity(ctx, parentType, parentID)
	if err != nil {
		return nil, fmt.Errorf("load parent schedule for %s %s: %w", parentType, parentID, err)
	}
	suggestion := &Suggestion{
		SuggestedSchedule: SuggestFromParent(plainEntries(parentEntries)),
		Source:            string(parentType),
		CanModify:         canModifySuggestion(roles),
	}
	if len(parentEntries) == 0 {
		suggestion.Source = "none"
	}
	return suggestion, nil
}

// CheckConflicts reports which future active appointments would no
// longer fit the proposed schedule. Nothing is persisted or mutated.
func (s *Service) CheckConflicts(ctx context.Context, et directory.EntityType, id uuid.UUID, proposed []ScheduleEntry) (*ConflictCheck, error) {
	if result := ValidateSchedule(proposed); !result.IsValid {
		return nil, &ValidationError{Result: result}
	}
	appts, err := s.appts.ListFutureActiveByEntity(ctx, et, id, s.today())
	if err != nil {
		return nil, fmt.Errorf("list appointments for %s %s: %w", et, id, err)
	}
	conflicts := DetectConflicts(proposed, appts)
	return &ConflictCheck{
		HasConflicts:         len(conflicts) > 0,
		Conflicts:            conflicts,
		AffectedAppointments: len(conflicts),
		RequiresRescheduling: len(conflicts) > 0,
	}, nil
}

// UpdateRequest is the full reconciliation input.
type UpdateRequest struct {
	EntityType      directory.EntityType
	EntityID        uuid.UUID
	Schedule        []ScheduleEntry
	HandleConflicts Strategy
	NotifyPatients  bool
	Reason          string
	ActorID         *uuid.UUID
}

// UpdateScheduleWithReconciliation validates the submission, replaces
// the schedule and resolves every conflicting appointment inside one
// transaction, then invalidates the cache and notifies affected
// patients. Notification failures are logged, never surfaced.
func (s *Service) UpdateScheduleWithReconciliation(ctx context.Context, req UpdateRequest) (*ReconciliationResult, error) {
	if !req.HandleConflicts.valid() {
		return nil, apperr.New(apperr.CodeBadRequest, i18n.Msgf(
			"استراتيجية معالجة التعارضات غير معروفة: %s",
			"unknown conflict handling strategy: %s",
			req.HandleConflicts))
	}
	if result := ValidateSchedule(req.Schedule); !result.IsValid {
		return nil, &ValidationError{Result: result}
	}
	containment, err := s.checkParentContainment(ctx, req.EntityType, req.EntityID, req.Schedule)
	if err != nil {
		return nil, err
	}
	if !containment.IsValid {
		return nil, &ValidationError{Result: containment}
	}

	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("%s_hours_changed", req.EntityType)
	}

	result := &ReconciliationResult{}
	var conflicts []Conflict

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		stored, err := s.repo.ReplaceForEntity(ctx, req.EntityType, req.EntityID, req.Schedule)
		if err != nil {
			return fmt.Errorf("replace schedule: %w", err)
		}
		result.WorkingHours = stored

		appts, err := s.appts.ListFutureActiveByEntity(ctx, req.EntityType, req.EntityID, s.today())
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		conflicts = DetectConflicts(req.Schedule, appts)

		for _, c := range conflicts {
			if err := s.resolveConflict(ctx, c, req, reason, result); err != nil {
				return err
			}
		}

		return s.auditor.Record(ctx, &audit.Event{
			Action:     audit.ActionScheduleUpdated,
			ActorID:    req.ActorID,
			EntityType: string(req.EntityType),
			EntityID:   req.EntityID,
			Detail: map[string]any{
				"strategy":  string(req.HandleConflicts),
				"conflicts": len(conflicts),
				"reason":    reason,
			},
		})
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeTransaction, i18n.Message{
			Ar: "فشل تحديث جدول العمل، لم يتم حفظ أي تغيير",
			En: "schedule update failed, no changes were saved",
		}, err)
	}

	s.cache.Invalidate(ctx, string(req.EntityType), req.EntityID.String())
	metrics.IncScheduleUpdate(string(req.EntityType))
	metrics.AddConflictsResolved(string(req.HandleConflicts), len(conflicts))

	if req.NotifyPatients {
		result.NotificationsSent = s.notifyConflicts(ctx, conflicts, req.HandleConflicts)
	}

	return result, nil
}

func (s *Service) resolveConflict(ctx context.Context, c Conflict, req UpdateRequest, reason string, result *ReconciliationResult) error {
	a := c.Appointment
	detail := ResolvedAppointment{
		AppointmentID:   a.ID,
		PatientName:     a.PatientName,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		ServiceName:     a.ServiceName,
		Action:          req.HandleConflicts,
		ConflictReason:  c.Reason,
		Message:         c.Message,
	}

	switch req.HandleConflicts {
	case StrategyReschedule:
		if err := s.appts.MarkForRescheduling(ctx, a.ID, reason, s.now().UTC()); err != nil {
			return fmt.Errorf("mark appointment %s for rescheduling: %w", a.ID, err)
		}
		result.AppointmentsMarkedForRescheduling++
		if err := s.auditor.Record(ctx, s.appointmentEvent(audit.ActionMarkedForRescheduling, a, req, reason)); err != nil {
			return err
		}

	case StrategyCancel:
		if err := s.appts.CancelWithReason(ctx, a.ID, reason); err != nil {
			return fmt.Errorf("cancel appointment %s: %w", a.ID, err)
		}
		result.AppointmentsCancelled++
		if err := s.auditor.Record(ctx, s.appointmentEvent(audit.ActionAppointmentCancelled, a, req, reason)); err != nil {
			return err
		}

	case StrategyNotify:
		if err := s.auditor.Record(ctx, s.appointmentEvent(audit.ActionConflictPatientNotified, a, req, reason)); err != nil {
			return err
		}
	}

	result.RescheduledAppointments = append(result.RescheduledAppointments, detail)
	return nil
}

func (s *Service) appointmentEvent(action audit.Action, a *appointment.Appointment, req UpdateRequest, reason string) *audit.Event {
	return &audit.Event{
		Action:     action,
		ActorID:    req.ActorID,
		EntityType: string(req.EntityType),
		EntityID:   req.EntityID,
		Detail: map[string]any{
			"appointment_id":   a.ID.String(),
			"appointment_date": a.AppointmentDate.Format("2006-01-02"),
			"appointment_time": a.AppointmentTime,
			"reason":           reason,
		},
	}
}

// notifyConflicts dispatches one message per conflict after the commit.
// Delivery is sequential and best-effort.
func (s *Service) notifyConflicts(ctx context.Context, conflicts []Conflict, strategy Strategy) int {
	templateID := notification.TemplateScheduleChangeNotice
	switch strategy {
	case StrategyReschedule:
		templateID = notification.TemplateRescheduleNeeded
	case StrategyCancel:
		templateID = notification.TemplateAppointmentCancelled
	}

	sent := 0
	for _, c := range conflicts {
		a := c.Appointment
		lang := i18n.LangAr
		if a.PatientLanguage == string(i18n.LangEn) {
			lang = i18n.LangEn
		}
		data := map[string]string{
			"patient_name": a.PatientName,
			"date":         a.AppointmentDate.Format("2006-01-02"),
			"time":         a.AppointmentTime,
			"service":      a.ServiceName,
		}
		if _, err := s.notifier.SendFromTemplate(ctx, templateID, lang, data, a.PatientPhone); err != nil {
			metrics.IncNotification("failed")
			s.logger.Warn().Err(err).
				Str("appointment_id", a.ID.String()).
				Str("recipient", a.PatientPhone).
				Msg("conflict notification failed")
			continue
		}
		metrics.IncNotification("sent")
		sent++
	}
	return sent
}

func plainEntries(stored []StoredEntry) []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(stored))
	for _, e := range stored {
		out = append(out, e.ScheduleEntry)
	}
	return out
}
