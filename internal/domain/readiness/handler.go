package readiness

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleScheduler, auth.RoleInventoryTech, auth.RoleSurgeon, auth.RoleBilling))
	readGroup.GET("/cases/:id/readiness", h.EvaluateCase)
	readGroup.GET("/cases/:id/readiness/cached", h.GetCached)
	readGroup.GET("/cases/:id/attestations", h.ListAttestations)
	readGroup.GET("/readiness/dashboard", h.Dashboard)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleScheduler, auth.RoleInventoryTech, auth.RoleSurgeon))
	writeGroup.POST("/cases/:id/attestations", h.Attest)
}

// EvaluateCase recomputes readiness from the live snapshot and refreshes the
// cache before responding.
func (h *Handler) EvaluateCase(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	res, err := h.svc.EvaluateCase(c.Request().Context(), caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetCached(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cached, err := h.svc.GetCached(c.Request().Context(), caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no cached evaluation")
	}
	return c.JSON(http.StatusOK, cached)
}

func (h *Handler) Dashboard(c echo.Context) error {
	facilityID, err := uuid.Parse(c.QueryParam("facility_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "facility_id is required")
	}
	from := time.Now().UTC().Truncate(24 * time.Hour)
	if v := c.QueryParam("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
	}
	to := from.AddDate(0, 0, 7)
	if v := c.QueryParam("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
	}
	results, err := h.svc.Dashboard(c.Request().Context(), facilityID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) Attest(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a Attestation
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.CaseID = caseID
	if a.ActorID == uuid.Nil {
		if actorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			a.ActorID = actorID
		}
	}
	if err := h.svc.Attest(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAttestations(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	atts, err := h.svc.ListAttestations(c.Request().Context(), caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, atts)
}
