package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_GetLogs(t *testing.T) {
	svc := NewService(newMockRepo())
	svc.LogAction(context.Background(), 1, "Booked appointment")
	svc.LogAction(context.Background(), 2, "Created a medical record")
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?user_id=2", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetLogs(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data  []Entry `json:"data"`
		Total int     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Created a medical record", body.Data[0].Action)
}

func TestHandler_GetLogs_BadParams(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	for _, target := range []string{
		"/api/v1/audit-logs?user_id=abc",
		"/api/v1/audit-logs?date=yesterday",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		err := h.GetLogs(e.NewContext(req, httptest.NewRecorder()))
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, target)
		assert.Equal(t, http.StatusBadRequest, he.Code, target)
	}
}
