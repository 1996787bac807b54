package workinghours

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shifa-health/shifa/internal/domain/directory"
	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/working-hours", auth.RequireRole("admin", "manager", "doctor", "receptionist"))
	g.GET("/suggest", h.suggest)
	g.GET("/:entityType/:entityId", h.getSchedule)
	g.POST("/:entityType/:entityId/validate", h.validate)
	g.POST("/:entityType/:entityId/check-conflicts", h.checkConflicts)
	g.PUT("/:entityType/:entityId", h.update, auth.RequireRole("admin", "manager", "doctor"))
}

func (h *Handler) entityParams(c echo.Context) (directory.EntityType, uuid.UUID, error) {
	et, err := directory.ParseEntityType(c.Param("entityType"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return et, id, nil
}

func (h *Handler) getSchedule(c echo.Context) error {
	et, id, err := h.entityParams(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.GetSchedule(c.Request().Context(), et, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"schedule": entries})
}

func (h *Handler) suggest(c echo.Context) error {
	parentType, err := directory.ParseEntityType(c.QueryParam("parentType"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	parentID, err := uuid.Parse(c.QueryParam("parentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid parentId")
	}
	roles := auth.RolesFromContext(c.Request().Context())
	suggestion, err := h.svc.SuggestSchedule(c.Request().Context(), roles, parentType, parentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, suggestion)
}

type scheduleRequest struct {
	Schedule []ScheduleEntry `json:"schedule"`
}

func (h *Handler) validate(c echo.Context) error {
	et, id, err := h.entityParams(c)
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.ValidateSchedule(c.Request().Context(), et, id, req.Schedule)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) checkConflicts(c echo.Context) error {
	et, id, err := h.entityParams(c)
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	check, err := h.svc.CheckConflicts(c.Request().Context(), et, id, req.Schedule)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, check)
}

type updateRequest struct {
	Schedule        []ScheduleEntry `json:"schedule"`
	HandleConflicts Strategy        `json:"handle_conflicts"`
	NotifyPatients  *bool           `json:"notify_patients"`
	Reason          string          `json:"reason"`
}

func (h *Handler) update(c echo.Context) error {
	et, id, err := h.entityParams(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.HandleConflicts == "" {
		req.HandleConflicts = StrategyNotify
	}
	notify := true
	if req.NotifyPatients != nil {
		notify = *req.NotifyPatients
	}

	var actorID *uuid.UUID
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		if parsed, err := uuid.Parse(uid); err == nil {
			actorID = &parsed
		}
	}

	result, err := h.svc.UpdateScheduleWithReconciliation(c.Request().Context(), UpdateRequest{
		EntityType:      et,
		EntityID:        id,
		Schedule:        req.Schedule,
		HandleConflicts: req.HandleConflicts,
		NotifyPatients:  notify,
		Reason:          req.Reason,
		ActorID:         actorID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// httpError maps service errors onto HTTP responses. Aggregated
// validation failures keep their full per-day error list.
func httpError(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]any{
			"code":   "validation_failed",
			"errors": vErr.Result.Errors,
		})
	}
	code := apperr.CodeOf(err)
	return echo.NewHTTPError(apperr.HTTPStatus(code), map[string]any{
		"code":    code,
		"message": apperr.MessageOf(err),
	})
}
