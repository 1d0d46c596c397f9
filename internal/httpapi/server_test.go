package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/edubotswana/edubot/internal/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDialog echoes a canned response and records the last exchange.
type recordingDialog struct {
	last     engine.Exchange
	response string
}

func (d *recordingDialog) Handle(ctx context.Context, ex engine.Exchange) string {
	d.last = ex
	return d.response
}

func postCallback(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestUSSDCallback(t *testing.T) {
	dialog := &recordingDialog{response: "CON Welcome to EduBot!"}
	handler := NewHandler(dialog, nil)

	rec := postCallback(t, handler, "/ussd/callback", url.Values{
		"sessionId":   {"at-1"},
		"phoneNumber": {"+26771234567"},
		"serviceCode": {"*384*123#"},
		"text":        {"1*2"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CON Welcome to EduBot!", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	assert.Equal(t, "at-1", dialog.last.SessionID)
	assert.Equal(t, "+26771234567", dialog.last.PhoneNumber)
	assert.Equal(t, "*384*123#", dialog.last.ServiceCode)
	assert.Equal(t, "1*2", dialog.last.Text)
}

func TestUSSDCallbackOnRootPath(t *testing.T) {
	dialog := &recordingDialog{response: "END Bye"}
	handler := NewHandler(dialog, nil)

	rec := postCallback(t, handler, "/", url.Values{"sessionId": {"at-2"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "END Bye", rec.Body.String())
}

func TestUSSDCallbackRequiresSessionID(t *testing.T) {
	handler := NewHandler(&recordingDialog{response: "CON hi"}, nil)

	rec := postCallback(t, handler, "/ussd/callback", url.Values{"text": {"1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHandler(&recordingDialog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := NewHandler(&recordingDialog{}, registry)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsDisabledWithoutGatherer(t *testing.T) {
	handler := NewHandler(&recordingDialog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.NotEqual(t, http.StatusOK, rec.Code)
}
