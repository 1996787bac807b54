package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shifa-health/shifa/internal/domain/directory"
	"github.com/shifa-health/shifa/internal/platform/auth"
	"github.com/shifa-health/shifa/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit/:entityType/:entityId", h.listByEntity, auth.RequireRole("admin"))
}

func (h *Handler) listByEntity(c echo.Context) error {
	et, err := directory.ParseEntityType(c.Param("entityType"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	page := pagination.FromContext(c)
	items, total, err := h.repo.ListByEntity(c.Request().Context(), string(et), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}
