package directory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/auth"
	"github.com/shifa-health/shifa/pkg/pagination"
)

// Handler exposes the directory HTTP API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the directory endpoints on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	orgs := api.Group("/organizations")
	orgs.GET("", h.listOrganizations)
	orgs.GET("/:id", h.getOrganization)
	orgs.GET("/:id/complexes", h.listComplexes)
	orgs.POST("", h.createOrganization, auth.RequireRole("admin"))

	complexes := api.Group("/complexes")
	complexes.GET("/:id", h.getComplex)
	complexes.GET("/:id/clinics", h.listClinics)
	complexes.POST("", h.createComplex, auth.RequireRole("admin"))

	clinics := api.Group("/clinics")
	clinics.GET("/:id", h.getClinic)
	clinics.GET("/:id/users", h.listUsers)
	clinics.POST("", h.createClinic, auth.RequireRole("admin"))

	users := api.Group("/users")
	users.GET("/:id", h.getUser)
	users.POST("", h.createUser, auth.RequireRole("admin"))
	users.PUT("/:id/clinic", h.assignUserClinic, auth.RequireRole("admin"))
}

func (h *Handler) createOrganization(c echo.Context) error {
	var o Organization
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOrganization(c.Request().Context(), &o); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) getOrganization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.GetOrganization(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) listOrganizations(c echo.Context) error {
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListOrganizations(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

func (h *Handler) createComplex(c echo.Context) error {
	var cx Complex
	if err := c.Bind(&cx); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateComplex(c.Request().Context(), &cx); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cx)
}

func (h *Handler) getComplex(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cx, err := h.svc.GetComplex(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cx)
}

func (h *Handler) listComplexes(c echo.Context) error {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListComplexes(c.Request().Context(), orgID, page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

func (h *Handler) createClinic(c echo.Context) error {
	var cl Clinic
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateClinic(c.Request().Context(), &cl); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) getClinic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cl, err := h.svc.GetClinic(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) listClinics(c echo.Context) error {
	complexID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListClinics(c.Request().Context(), complexID, page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

func (h *Handler) createUser(c echo.Context) error {
	var u User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateUser(c.Request().Context(), &u); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) getUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) listUsers(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(c.Request().Context(), clinicID, page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

type assignClinicRequest struct {
	ClinicID *uuid.UUID `json:"clinic_id"`
}

func (h *Handler) assignUserClinic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req assignClinicRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignUserClinic(c.Request().Context(), id, req.ClinicID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// httpError translates service errors into HTTP responses carrying the
// bilingual message.
func httpError(err error) error {
	code := apperr.CodeOf(err)
	return echo.NewHTTPError(apperr.HTTPStatus(code), map[string]any{
		"code":    code,
		"message": apperr.MessageOf(err),
	})
}
