package financial

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/auth"
	"github.com/Twaynet/ASC-Inventory-sub003/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleScheduler, auth.RoleBilling, auth.RoleClinic))
	readGroup.GET("/surgery-requests/:id/financial", h.GetRisk)
	readGroup.GET("/surgery-requests/:id/financial/history", h.GetHistory)
	readGroup.GET("/financial/dashboard", h.Dashboard)

	clinicGroup := api.Group("", auth.RequireRole(auth.RoleClinic))
	clinicGroup.POST("/surgery-requests/:id/financial/declaration", h.RecordDeclaration)

	billingGroup := api.Group("", auth.RequireRole(auth.RoleBilling))
	billingGroup.POST("/surgery-requests/:id/financial/verification", h.RecordVerification)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/surgery-requests/:id/financial/override", h.RecordOverride)
}

func actorFromContext(c echo.Context) uuid.UUID {
	actorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil
	}
	return actorID
}

func (h *Handler) RecordDeclaration(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d ClinicDeclaration
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.RequestID = requestID
	if d.ActorID == uuid.Nil {
		d.ActorID = actorFromContext(c)
	}
	if err := h.svc.RecordDeclaration(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) RecordVerification(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var v AscVerification
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.RequestID = requestID
	if v.ActorID == uuid.Nil {
		v.ActorID = actorFromContext(c)
	}
	if err := h.svc.RecordVerification(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) RecordOverride(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var o Override
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.RequestID = requestID
	if o.ActorID == uuid.Nil {
		o.ActorID = actorFromContext(c)
	}
	if err := h.svc.RecordOverride(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetRisk(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cache, err := h.svc.GetRisk(c.Request().Context(), requestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cache)
}

func (h *Handler) GetHistory(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	history, err := h.svc.GetHistory(c.Request().Context(), requestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) Dashboard(c echo.Context) error {
	facilityID, err := uuid.Parse(c.QueryParam("facility_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "facility_id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Dashboard(c.Request().Context(), facilityID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
