package intake

import (
	"errors"
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
	readGroup.GET("/surgery-requests", h.ListRequests)
	readGroup.GET("/surgery-requests/:id", h.GetRequest)
	readGroup.GET("/surgery-requests/:id/timeline", h.Timeline)
	readGroup.GET("/surgery-requests/:id/submissions", h.Submissions)
	readGroup.GET("/surgery-requests/:id/conversion", h.GetConversion)

	clinicGroup := api.Group("", auth.RequireRole(auth.RoleClinic))
	clinicGroup.POST("/surgery-requests", h.Submit)
	clinicGroup.POST("/surgery-requests/:id/withdraw", h.Withdraw)

	facilityGroup := api.Group("", auth.RequireRole(auth.RoleScheduler))
	facilityGroup.POST("/surgery-requests/:id/return", h.Return)
	facilityGroup.POST("/surgery-requests/:id/accept", h.Accept)
	facilityGroup.POST("/surgery-requests/:id/reject", h.Reject)
	facilityGroup.POST("/surgery-requests/:id/convert", h.Convert)
	facilityGroup.POST("/surgeon-mappings", h.CreateMapping)
	facilityGroup.GET("/surgeon-mappings", h.ListMappings)
}

// httpError maps domain errors to transport status codes: conflicts to 409,
// the unmapped surgeon to 422 so the operator sees what to fix.
func httpError(err error) *echo.HTTPError {
	switch {
	case IsConflict(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSurgeonNotMapped):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) Submit(c echo.Context) error {
	var req SurgeryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Submit(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if result.Outcome == OutcomeCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req, err := h.svc.GetRequest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) ListRequests(c echo.Context) error {
	facilityID, err := uuid.Parse(c.QueryParam("facility_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "facility_id is required")
	}
	status := RequestStatus(c.QueryParam("status"))
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRequests(c.Request().Context(), facilityID, status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type transitionBody struct {
	ReasonCode string  `json:"reason_code"`
	Note       *string `json:"note"`
}

// actorFromContext resolves the authenticated subject. Every transition lands
// an audit row, and the trail must name a real actor, so requests without a
// parseable subject are rejected rather than recorded as uuid.Nil.
func actorFromContext(c echo.Context) (uuid.UUID, error) {
	actorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authenticated actor required")
	}
	return actorID, nil
}

func (h *Handler) transition(c echo.Context, fn func(id, actorID uuid.UUID, body transitionBody) (*SurgeryRequest, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body transitionBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	req, err := fn(id, actorID, body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) Return(c echo.Context) error {
	return h.transition(c, func(id, actorID uuid.UUID, body transitionBody) (*SurgeryRequest, error) {
		return h.svc.Return(c.Request().Context(), id, actorID, body.ReasonCode, body.Note)
	})
}

func (h *Handler) Accept(c echo.Context) error {
	return h.transition(c, func(id, actorID uuid.UUID, body transitionBody) (*SurgeryRequest, error) {
		return h.svc.Accept(c.Request().Context(), id, actorID, body.Note)
	})
}

func (h *Handler) Reject(c echo.Context) error {
	return h.transition(c, func(id, actorID uuid.UUID, body transitionBody) (*SurgeryRequest, error) {
		return h.svc.Reject(c.Request().Context(), id, actorID, body.ReasonCode, body.Note)
	})
}

func (h *Handler) Withdraw(c echo.Context) error {
	return h.transition(c, func(id, actorID uuid.UUID, body transitionBody) (*SurgeryRequest, error) {
		return h.svc.Withdraw(c.Request().Context(), id, actorID, body.Note)
	})
}

func (h *Handler) Convert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	conversion, err := h.svc.Convert(c.Request().Context(), id, actorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, conversion)
}

func (h *Handler) Timeline(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	events, err := h.svc.Timeline(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) Submissions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	subs, err := h.svc.Submissions(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *Handler) GetConversion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	conversion, err := h.svc.GetConversion(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if conversion == nil {
		return echo.NewHTTPError(http.StatusNotFound, "request has not been converted")
	}
	return c.JSON(http.StatusOK, conversion)
}

func (h *Handler) CreateMapping(c echo.Context) error {
	var m SurgeonMapping
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateMapping(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMappings(c echo.Context) error {
	clinicID, err := uuid.Parse(c.QueryParam("clinic_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "clinic_id is required")
	}
	mappings, err := h.svc.ListMappings(c.Request().Context(), clinicID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, mappings)
}
