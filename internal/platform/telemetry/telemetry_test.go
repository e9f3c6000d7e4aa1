package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMetricsEndpoint(t *testing.T) {
	p := NewProvider("asc-server")
	p.ReadinessEvaluated("GREEN")
	p.ReadinessEvaluated("RED")
	p.RiskRecomputed("HIGH")
	p.IntakeTransition("SUBMITTED")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := p.Handler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`readiness_evaluations_total{state="GREEN"} 1`,
		`readiness_evaluations_total{state="RED"} 1`,
		`financial_risk_recomputations_total{tier="HIGH"} 1`,
		`intake_transitions_total{event="SUBMITTED"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestMiddleware_RecordsDuration(t *testing.T) {
	p := NewProvider("asc-server")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cases", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := p.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mreq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	mc := e.NewContext(mreq, mrec)
	if err := p.Handler()(mc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mrec.Body.String(), "http_server_request_duration_seconds") {
		t.Error("expected request duration metric to be exported")
	}
}
