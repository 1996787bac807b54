package workinghours

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shifa-health/shifa/internal/domain/appointment"
	"github.com/shifa-health/shifa/internal/domain/audit"
	"github.com/shifa-health/shifa/internal/domain/directory"
	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
	"github.com/shifa-health/shifa/internal/platform/notification"
)

type scheduleKey struct {
	et directory.EntityType
	id uuid.UUID
}

type memRepo struct {
	schedules map[scheduleKey][]StoredEntry
}

func newMemRepo() *memRepo {
	return &memRepo{schedules: map[scheduleKey][]StoredEntry{}}
}

func (r *memRepo) GetForEntity(_ context.Context, et directory.EntityType, id uuid.UUID) ([]StoredEntry, error) {
	return r.schedules[scheduleKey{et, id}], nil
}

func (r *memRepo) ReplaceForEntity(_ context.Context, et directory.EntityType, id uuid.UUID, schedule []ScheduleEntry) ([]StoredEntry, error) {
	now := time.Now()
	var stored []StoredEntry
	for _, e := range schedule {
		stored = append(stored, StoredEntry{
			ID:            uuid.New(),
			EntityType:    et,
			EntityID:      id,
			ScheduleEntry: e,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	r.schedules[scheduleKey{et, id}] = stored
	return stored, nil
}

func (r *memRepo) snapshot() map[scheduleKey][]StoredEntry {
	cp := map[scheduleKey][]StoredEntry{}
	for k, v := range r.schedules {
		cp[k] = append([]StoredEntry(nil), v...)
	}
	return cp
}

func (r *memRepo) seed(et directory.EntityType, id uuid.UUID, schedule []ScheduleEntry) {
	stored, _ := r.ReplaceForEntity(context.Background(), et, id, schedule)
	r.schedules[scheduleKey{et, id}] = stored
}

type memApptStore struct {
	appts  map[uuid.UUID]*appointment.Appointment
	failOn map[uuid.UUID]error
}

func newMemApptStore() *memApptStore {
	return &memApptStore{appts: map[uuid.UUID]*appointment.Appointment{}, failOn: map[uuid.UUID]error{}}
}

func (s *memApptStore) add(a *appointment.Appointment) { s.appts[a.ID] = a }

func (s *memApptStore) ListFutureActiveByEntity(_ context.Context, _ directory.EntityType, _ uuid.UUID, from time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range s.appts {
		if a.Status.Active() && !a.AppointmentDate.Before(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memApptStore) CancelWithReason(_ context.Context, id uuid.UUID, reason string) error {
	if err := s.failOn[id]; err != nil {
		return err
	}
	a := s.appts[id]
	a.Status = appointment.StatusCancelled
	a.CancellationReason = &reason
	return nil
}

func (s *memApptStore) MarkForRescheduling(_ context.Context, id uuid.UUID, reason string, at time.Time) error {
	if err := s.failOn[id]; err != nil {
		return err
	}
	a := s.appts[id]
	a.Status = appointment.StatusCancelled
	a.CancellationReason = &reason
	a.MarkedForReschedulingAt = &at
	return nil
}

func (s *memApptStore) snapshot() map[uuid.UUID]appointment.Appointment {
	cp := map[uuid.UUID]appointment.Appointment{}
	for id, a := range s.appts {
		cp[id] = *a
	}
	return cp
}

// memTx snapshots the in-memory stores before the unit runs and restores
// them when it fails, mimicking a database rollback.
type memTx struct {
	repo  *memRepo
	appts *memApptStore
}

func (t *memTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	schedules := t.repo.snapshot()
	appts := t.appts.snapshot()
	if err := fn(ctx); err != nil {
		t.repo.schedules = schedules
		for id, a := range appts {
			if existing, ok := t.appts.appts[id]; ok {
				*existing = a
			} else {
				restored := a
				t.appts.appts[id] = &restored
			}
		}
		return err
	}
	return nil
}

type staticResolver struct {
	parent *directory.ParentRef
	err    error
}

func (r *staticResolver) ResolveParent(context.Context, directory.EntityType, uuid.UUID) (*directory.ParentRef, error) {
	return r.parent, r.err
}

type memCache struct {
	store       map[string]any
	invalidated []string
}

func newMemCache() *memCache { return &memCache{store: map[string]any{}} }

func (c *memCache) Get(_ context.Context, et, id string, dest any) bool {
	v, ok := c.store[et+":"+id]
	if !ok {
		return false
	}
	*dest.(*[]StoredEntry) = v.([]StoredEntry)
	return true
}

func (c *memCache) Set(_ context.Context, et, id string, v any) {
	c.store[et+":"+id] = v
}

func (c *memCache) Invalidate(_ context.Context, et, id string) {
	delete(c.store, et+":"+id)
	c.invalidated = append(c.invalidated, et+":"+id)
}

type recordingNotifier struct {
	sent []string
	fail bool
}

func (n *recordingNotifier) SendFromTemplate(_ context.Context, templateID string, _ i18n.Language, _ map[string]string, recipient string) (*notification.Notification, error) {
	if n.fail {
		return nil, errors.New("sms gateway down")
	}
	n.sent = append(n.sent, templateID+"->"+recipient)
	return &notification.Notification{}, nil
}

type recordingAuditor struct {
	events []*audit.Event
	fail   bool
}

func (a *recordingAuditor) Record(_ context.Context, e *audit.Event) error {
	if a.fail {
		return errors.New("audit store down")
	}
	a.events = append(a.events, e)
	return nil
}

type serviceFixture struct {
	svc      *Service
	repo     *memRepo
	appts    *memApptStore
	cache    *memCache
	notifier *recordingNotifier
	auditor  *recordingAuditor
	resolver *staticResolver
	clinicID uuid.UUID
}

func newServiceFixture() *serviceFixture {
	repo := newMemRepo()
	appts := newMemApptStore()
	cache := newMemCache()
	notifier := &recordingNotifier{}
	auditor := &recordingAuditor{}
	resolver := &staticResolver{}

	svc := NewService(repo, resolver, appts, &memTx{repo: repo, appts: appts},
		cache, notifier, auditor, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	return &serviceFixture{
		svc:      svc,
		repo:     repo,
		appts:    appts,
		cache:    cache,
		notifier: notifier,
		auditor:  auditor,
		resolver: resolver,
		clinicID: uuid.New(),
	}
}

func (f *serviceFixture) update(t *testing.T, req UpdateRequest) *ReconciliationResult {
	t.Helper()
	result, err := f.svc.UpdateScheduleWithReconciliation(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func baseRequest(clinicID uuid.UUID, schedule []ScheduleEntry, strategy Strategy) UpdateRequest {
	return UpdateRequest{
		EntityType:      directory.EntityClinic,
		EntityID:        clinicID,
		Schedule:        schedule,
		HandleConflicts: strategy,
		NotifyPatients:  true,
	}
}

func TestUpdate_PersistsSchedule(t *testing.T) {
	f := newServiceFixture()

	result := f.update(t, baseRequest(f.clinicID, fullWeek("08:00", "17:00"), StrategyNotify))
	if len(result.WorkingHours) != 7 {
		t.Fatalf("expected 7 stored rows, got %d", len(result.WorkingHours))
	}
	if len(f.auditor.events) != 1 || f.auditor.events[0].Action != audit.ActionScheduleUpdated {
		t.Fatalf("expected one schedule_updated audit event, got %v", f.auditor.events)
	}
}

func TestUpdate_RejectsInvalidScheduleWithoutPersisting(t *testing.T) {
	f := newServiceFixture()

	week := fullWeek("08:00", "17:00")
	week[0].OpeningTime = strPtr("25:00")
	_, err := f.svc.UpdateScheduleWithReconciliation(context.Background(), baseRequest(f.clinicID, week, StrategyNotify))

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.schedules) != 0 {
		t.Fatal("nothing must be persisted on validation failure")
	}
}

func TestUpdate_RejectsContainmentBreach(t *testing.T) {
	f := newServiceFixture()

	complexID := uuid.New()
	f.resolver.parent = &directory.ParentRef{EntityType: directory.EntityComplex, EntityID: complexID}
	f.repo.seed(directory.EntityComplex, complexID, fullWeek("08:00", "17:00"))

	_, err := f.svc.UpdateScheduleWithReconciliation(context.Background(), baseRequest(f.clinicID, fullWeek("07:00", "17:00"), StrategyNotify))

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.Result.Errors[0].SuggestedRange == nil {
		t.Fatal("expected suggested range from parent bounds")
	}
	if got := f.repo.schedules[scheduleKey{directory.EntityClinic, f.clinicID}]; len(got) != 0 {
		t.Fatal("child schedule must not be persisted")
	}
}

func TestUpdate_RejectsUnknownStrategy(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.UpdateScheduleWithReconciliation(context.Background(), baseRequest(f.clinicID, fullWeek("08:00", "17:00"), Strategy("shrug")))
	if apperr.CodeOf(err) != apperr.CodeBadRequest {
		t.Fatalf("expected bad_request, got %v", err)
	}
}

func TestUpdate_CancelStrategy(t *testing.T) {
	f := newServiceFixture()

	conflicting := apptAt(testFriday, "10:00")
	f.appts.add(conflicting)
	fitting := apptAt(testMonday, "10:00")
	f.appts.add(fitting)

	result := f.update(t, baseRequest(f.clinicID, fullWeek("09:00", "18:00"), StrategyCancel)) // Friday closed

	if result.AppointmentsCancelled != 1 {
		t.Fatalf("expected 1 cancellation, got %d", result.AppointmentsCancelled)
	}
	if conflicting.Status != appointment.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", conflicting.Status)
	}
	if conflicting.CancellationReason == nil || *conflicting.CancellationReason != "clinic_hours_changed" {
		t.Fatalf("expected default reason, got %v", conflicting.CancellationReason)
	}
	if fitting.Status != appointment.StatusScheduled {
		t.Fatal("fitting appointment must be untouched")
	}
	if result.NotificationsSent != 1 || len(f.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", result.NotificationsSent)
	}
	// schedule_updated plus one cancellation event
	if len(f.auditor.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(f.auditor.events))
	}
}

func TestUpdate_RescheduleStrategyFlagsOnly(t *testing.T) {
	f := newServiceFixture()

	conflicting := apptAt(testFriday, "10:00")
	f.appts.add(conflicting)

	result := f.update(t, baseRequest(f.clinicID, fullWeek("09:00", "18:00"), StrategyReschedule))

	if result.AppointmentsMarkedForRescheduling != 1 || result.AppointmentsRescheduled != 0 {
		t.Fatalf("reschedule must flag, not rebook: %+v", result)
	}
	if conflicting.Status != appointment.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", conflicting.Status)
	}
	if conflicting.MarkedForReschedulingAt == nil {
		t.Fatal("expected rescheduling timestamp")
	}
}

func TestUpdate_NotifyStrategyLeavesAppointmentsUntouched(t *testing.T) {
	f := newServiceFixture()

	conflicting := apptAt(testFriday, "10:00")
	f.appts.add(conflicting)

	result := f.update(t, baseRequest(f.clinicID, fullWeek("09:00", "18:00"), StrategyNotify))

	if conflicting.Status != appointment.StatusScheduled || conflicting.CancellationReason != nil {
		t.Fatalf("notify must not mutate the appointment, got %+v", conflicting)
	}
	if result.NotificationsSent != 1 {
		t.Fatalf("expected notification, got %d", result.NotificationsSent)
	}
}

func TestUpdate_NotifyPatientsFalseSuppressesNotifications(t *testing.T) {
	f := newServiceFixture()
	f.appts.add(apptAt(testFriday, "10:00"))

	req := baseRequest(f.clinicID, fullWeek("09:00", "18:00"), StrategyCancel)
	req.NotifyPatients = false
	result := f.update(t, req)

	if result.NotificationsSent != 0 || len(f.notifier.sent) != 0 {
		t.Fatal("notifications must be suppressed")
	}
}

func TestUpdate_AtomicRollbackOnResolutionFailure(t *testing.T) {
	f := newServiceFixture()

	old := fullWeek("08:00", "20:00")
	f.repo.seed(directory.EntityClinic, f.clinicID, old)

	first := apptAt(testFriday, "10:00")
	second := apptAt(testFriday, "11:00")
	f.appts.add(first)
	f.appts.add(second)
	// One of the two cancellations blows up partway through the batch.
	f.appts.failOn[second.ID] = errors.New("write failed")

	_, err := f.svc.UpdateScheduleWithReconciliation(context.Background(), baseRequest(f.clinicID, fullWeek("09:00", "18:00"), StrategyCancel))
	if apperr.CodeOf(err) != apperr.CodeTransaction {
		t.Fatalf("expected transaction_error, got %v", err)
	}

	// Re-read: the pre-update schedule and both appointments survive.
	got, _ := f.repo.GetForEntity(context.Background(), directory.EntityClinic, f.clinicID)
	if len(got) != 7 || *got[0].OpeningTime != "08:00" || *got[0].ClosingTime != "20:00" {
		t.Fatalf("expected pre-update schedule after rollback, got %+v", got[0])
	}
	if first.Status != appointment.StatusScheduled {
		t.Fatal("first appointment must be restored")
	}
	if len(f.notifier.sent) != 0 {
		t.Fatal("no notifications after an aborted unit")
	}
}

func TestUpdate_AuditFailureAbortsUnit(t *testing.T) {
	f := newServiceFixture()
	f.auditor.fail = true

	_, err := f.svc.UpdateScheduleWithReconciliation(context.Background(), baseRequest(f.clinicID, fullWeek("08:00", "17:00"), StrategyNotify))
	if apperr.CodeOf(err) != apperr.CodeTransaction {
		t.Fatalf("expected transaction_error, got %v", err)
	}
	if len(f.repo.schedules[scheduleKey{directory.EntityClinic, f.clinicID}]) != 0 {
		t.Fatal("schedule must roll back with the audit write")
	}
}

func TestUpdate_NotificationFailureDoesNotFailOperation(t *testing.T) {
	f := newServiceFixture()
	f.notifier.fail = true
	f.appts.add(apptAt(testFriday, "10:00"))

	result := f.update(t, baseRequest(f.clinicID, fullWeek("09:00", "18:00"), StrategyCancel))
	if result.AppointmentsCancelled != 1 {
		t.Fatalf("cancellation must stand, got %+v", result)
	}
	if result.NotificationsSent != 0 {
		t.Fatalf("failed sends must not be counted, got %d", result.NotificationsSent)
	}
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	f := newServiceFixture()

	f.update(t, baseRequest(f.clinicID, fullWeek("08:00", "17:00"), StrategyNotify))
	if len(f.cache.invalidated) != 1 {
		t.Fatalf("expected one invalidation, got %v", f.cache.invalidated)
	}
}

func TestGetSchedule_CachesReads(t *testing.T) {
	f := newServiceFixture()
	f.repo.seed(directory.EntityClinic, f.clinicID, fullWeek("08:00", "17:00"))

	first, err := f.svc.GetSchedule(context.Background(), directory.EntityClinic, f.clinicID)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(first))
	}

	// Mutate the store behind the cache; the cached copy must win.
	f.repo.schedules = map[scheduleKey][]StoredEntry{}
	second, err := f.svc.GetSchedule(context.Background(), directory.EntityClinic, f.clinicID)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 7 {
		t.Fatalf("expected cached entries, got %d", len(second))
	}
}

func TestCheckConflicts_Standalone(t *testing.T) {
	f := newServiceFixture()
	f.appts.add(apptAt(testFriday, "10:00"))

	check, err := f.svc.CheckConflicts(context.Background(), directory.EntityClinic, f.clinicID, fullWeek("09:00", "18:00"))
	if err != nil {
		t.Fatal(err)
	}
	if !check.HasConflicts || check.AffectedAppointments != 1 || !check.RequiresRescheduling {
		t.Fatalf("unexpected check %+v", check)
	}
	if len(f.auditor.events) != 0 {
		t.Fatal("pre-flight check must not write anything")
	}
}

func TestSuggestSchedule_RoleGating(t *testing.T) {
	f := newServiceFixture()
	parentID := uuid.New()
	f.repo.seed(directory.EntityComplex, parentID, fullWeek("08:00", "17:00"))

	admin, err := f.svc.SuggestSchedule(context.Background(), []string{"admin"}, directory.EntityComplex, parentID)
	if err != nil {
		t.Fatal(err)
	}
	if !admin.CanModify || admin.Source != "complex" || len(admin.SuggestedSchedule) != 6 {
		t.Fatalf("unexpected suggestion %+v", admin)
	}

	doctor, err := f.svc.SuggestSchedule(context.Background(), []string{"doctor"}, directory.EntityComplex, parentID)
	if err != nil {
		t.Fatal(err)
	}
	if doctor.CanModify {
		t.Fatal("doctors take the suggestion as fixed")
	}

	// A managing role anywhere in the set grants modification.
	mixed, err := f.svc.SuggestSchedule(context.Background(), []string{"doctor", "manager"}, directory.EntityComplex, parentID)
	if err != nil {
		t.Fatal(err)
	}
	if !mixed.CanModify {
		t.Fatal("manager role must grant modification regardless of position")
	}

	receptionist, err := f.svc.SuggestSchedule(context.Background(), []string{"receptionist"}, directory.EntityComplex, parentID)
	if err != nil {
		t.Fatal(err)
	}
	if receptionist.CanModify {
		t.Fatal("receptionists take the suggestion as fixed")
	}
}

func TestSuggestSchedule_EmptyParent(t *testing.T) {
	f := newServiceFixture()

	got, err := f.svc.SuggestSchedule(context.Background(), []string{"admin"}, directory.EntityComplex, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.SuggestedSchedule) != 0 || got.Source != "none" {
		t.Fatalf("expected empty suggestion, got %+v", got)
	}
}
