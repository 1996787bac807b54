// Package notification delivers SMS and email messages to patients when
// a schedule change touches their appointments. Templates are bilingual;
// the patient's preferred language picks the rendered side.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// Type is the channel used to deliver a notification.
type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
)

// Built-in template ids for schedule reconciliation outcomes.
const (
	TemplateAppointmentCancelled = "appointment-cancelled"
	TemplateRescheduleNeeded     = "appointment-reschedule-needed"
	TemplateScheduleChangeNotice = "schedule-change-notice"
	TemplateAppointmentReminder  = "appointment-reminder"
)

// Notification is a single outbound message.
type Notification struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Recipient  string            `json:"recipient"`
	Language   i18n.Language     `json:"language"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body"`
	TemplateID string            `json:"template_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	SentAt     *time.Time        `json:"sent_at,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// EmailSender sends email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender sends SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template is a reusable bilingual message template. Both sides carry
// the same {{key}} placeholders.
type Template struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Subject i18n.Message `json:"subject"`
	Body    i18n.Message `json:"body"`
	Type    Type         `json:"type"`
}

// TemplateEngine stores templates and renders them per language.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates an engine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:   TemplateAppointmentCancelled,
			Name: "Appointment Cancelled",
			Subject: i18n.Message{
				Ar: "إلغاء موعدك",
				En: "Your appointment has been cancelled",
			},
			Body: i18n.Message{
				Ar: "عزيزي {{patient_name}}، نعتذر عن إلغاء موعدك بتاريخ {{date}} الساعة {{time}} بسبب تغيير ساعات العمل. يرجى التواصل معنا لحجز موعد جديد.",
				En: "Dear {{patient_name}}, we are sorry to inform you that your appointment on {{date}} at {{time}} was cancelled due to a change in working hours. Please contact us to book a new appointment.",
			},
			Type: TypeSMS,
		},
		{
			ID:   TemplateRescheduleNeeded,
			Name: "Appointment Needs Rescheduling",
			Subject: i18n.Message{
				Ar: "موعدك يحتاج إلى إعادة جدولة",
				En: "Your appointment needs rescheduling",
			},
			Body: i18n.Message{
				Ar: "عزيزي {{patient_name}}، تغيرت ساعات العمل وأصبح موعدك بتاريخ {{date}} الساعة {{time}} خارج أوقات الدوام. سنتواصل معك قريباً لتحديد موعد جديد.",
				En: "Dear {{patient_name}}, working hours have changed and your appointment on {{date}} at {{time}} now falls outside them. We will contact you shortly to arrange a new time.",
			},
			Type: TypeSMS,
		},
		{
			ID:   TemplateScheduleChangeNotice,
			Name: "Schedule Change Notice",
			Subject: i18n.Message{
				Ar: "تنبيه بتغيير ساعات العمل",
				En: "Working hours change notice",
			},
			Body: i18n.Message{
				Ar: "عزيزي {{patient_name}}، نود إعلامك بأن ساعات العمل قد تغيرت وقد يتأثر موعدك بتاريخ {{date}} الساعة {{time}}. يرجى التأكد قبل الحضور.",
				En: "Dear {{patient_name}}, please note that working hours have changed and your appointment on {{date}} at {{time}} may be affected. Kindly confirm before visiting.",
			},
			Type: TypeSMS,
		},
		{
			ID:   TemplateAppointmentReminder,
			Name: "Appointment Reminder",
			Subject: i18n.Message{
				Ar: "تذكير بموعدك",
				En: "Appointment reminder",
			},
			Body: i18n.Message{
				Ar: "عزيزي {{patient_name}}، نذكرك بموعدك بتاريخ {{date}} الساعة {{time}}.",
				En: "Dear {{patient_name}}, this is a reminder of your appointment on {{date}} at {{time}}.",
			},
			Type: TypeSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template, picks the side matching lang and performs
// {{key}} replacement. Placeholders missing from data are left as-is.
func (e *TemplateEngine) Render(templateID string, lang i18n.Language, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject.In(lang)
	body = t.Body.In(lang)
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

func (e *TemplateEngine) templateType(templateID string) Type {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Type
	}
	return TypeSMS
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Manager orchestrates sending, storage and retrieval of notifications.
type Manager struct {
	emailSender   EmailSender
	smsSender     SMSSender
	templates     *TemplateEngine
	mu            sync.RWMutex
	notifications map[string]*Notification
}

func NewManager(email EmailSender, sms SMSSender, tpl *TemplateEngine) *Manager {
	return &Manager{
		emailSender:   email,
		smsSender:     sms,
		templates:     tpl,
		notifications: make(map[string]*Notification),
	}
}

// Send dispatches a notification through its channel, assigns an id and
// timestamps, and keeps the result for the stats and retry endpoints.
func (m *Manager) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = "pending"

	var sendErr error
	switch n.Type {
	case TypeEmail:
		sendErr = m.emailSender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case TypeSMS:
		sendErr = m.smsSender.SendSMS(ctx, n.Recipient, n.Body)
	default:
		sendErr = fmt.Errorf("unsupported notification type: %s", n.Type)
	}

	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	m.mu.Lock()
	m.notifications[n.ID] = n
	m.mu.Unlock()

	return sendErr
}

// SendFromTemplate renders a template in the given language and sends
// the resulting notification.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, lang i18n.Language, data map[string]string, recipient string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, lang, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Type:       m.templates.templateType(templateID),
		Recipient:  recipient,
		Language:   lang,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		Data:       data,
	}

	if err := m.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a notification by id.
func (m *Manager) Get(_ context.Context, id string) (*Notification, error) {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns notifications for a recipient, up to limit.
func (m *Manager) ListByRecipient(_ context.Context, recipient string, limit int) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Retry re-sends a failed notification.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != "failed" {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}

	var sendErr error
	switch n.Type {
	case TypeEmail:
		sendErr = m.emailSender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case TypeSMS:
		sendErr = m.smsSender.SendSMS(ctx, n.Recipient, n.Body)
	default:
		sendErr = fmt.Errorf("unsupported notification type: %s", n.Type)
	}

	m.mu.Lock()
	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns notification counts grouped by status.
func (m *Manager) Stats(_ context.Context) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range m.notifications {
		stats[n.Status]++
	}
	return stats
}

// Handler exposes notification operations over HTTP.
type Handler struct {
	manager *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{manager: mgr}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications/stats", h.HandleStats)
	g.GET("/notifications/:id", h.HandleGet)
	g.GET("/notifications", h.HandleList)
	g.POST("/notifications/:id/retry", h.HandleRetry)
}

func (h *Handler) HandleGet(c echo.Context) error {
	id := c.Param("id")
	n, err := h.manager.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) HandleList(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient query parameter is required"})
	}

	list, err := h.manager.ListByRecipient(c.Request().Context(), recipient, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) HandleRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.manager.Retry(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	n, _ := h.manager.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(c.Request().Context()))
}
