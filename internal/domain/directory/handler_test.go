package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_FilterDoctors(t *testing.T) {
	repo := newMockRepo()
	repo.doctors[3] = []*Doctor{{ID: 2, Name: "dr_grey", Specialties: []string{"Surgery"}}}
	h := NewHandler(NewService(repo))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors?specialty_id=3", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.FilterDoctors(e.NewContext(req, rec)))

	var got []Doctor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Contains(t, rec.Body.String(), `"doctor_id":2`)
}

func TestHandler_FilterDoctors_BadQuery(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	for _, q := range []string{"", "?specialty_id=abc", "?specialty_id=-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors"+q, nil)
		err := h.FilterDoctors(e.NewContext(req, httptest.NewRecorder()))
		var he *echo.HTTPError
		require.True(t, errors.As(err, &he), q)
		assert.Equal(t, http.StatusBadRequest, he.Code, q)
	}
}

func TestHandler_CreateDepartment(t *testing.T) {
	repo := newMockRepo()
	h := NewHandler(NewService(repo))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/departments",
		strings.NewReader(`{"name":"Radiology","services":["MRI","CT"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateDepartment(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.departments, 1)
	assert.Equal(t, []string{"MRI", "CT"}, repo.departments[0].Services)
}

func TestHandler_ListDepartments_Empty(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListDepartments(e.NewContext(req, rec)))
	assert.JSONEq(t, `[]`, rec.Body.String())
}
