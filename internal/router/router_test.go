package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-ui/internal/config"
	"github.com/iliyamo/study-ui/internal/handler"
	"github.com/iliyamo/study-ui/internal/middleware"
	"github.com/iliyamo/study-ui/internal/model"
	"github.com/iliyamo/study-ui/internal/tracker"
	"github.com/iliyamo/study-ui/internal/utils"
)

const secret = "router-secret"

type mapStore map[string][]model.StudyRow

func (m mapStore) Load(_ context.Context, key string) ([]model.StudyRow, bool, error) {
	rows, ok := m[key]
	return append([]model.StudyRow(nil), rows...), ok, nil
}

func (m mapStore) Save(_ context.Context, key string, rows []model.StudyRow) error {
	m[key] = append([]model.StudyRow(nil), rows...)
	return nil
}

func newServer() *echo.Echo {
	e := echo.New()
	RegisterRoutes(e)
	v1 := e.Group("/v1")
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	RegisterSeating(v1, handler.NewSeatingHandler(config.SeatingConfig{MaxSeats: 60, DefaultSeats: 9, DefaultVIP: "4,7"}, nil), passthrough)
	RegisterTracker(v1, handler.NewTrackerHandler(tracker.NewService(mapStore{}), nil), secret, passthrough)
	return e
}

func call(e *echo.Echo, method, target, token string) int {
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoutes(t *testing.T) {
	e := newServer()
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/seating?n=5", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/seating/steps", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/seating/sample", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/topics/dp/rows", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/topics/dp/rows.csv", ""))
}

func TestTrackerWritesNeedEditor(t *testing.T) {
	e := newServer()
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/v1/topics/dp/rows", ""))
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/v1/topics/dp/reset", ""))

	viewer, err := utils.NewAccessToken(secret, "v", "VIEWER", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(e, http.MethodPost, "/v1/topics/dp/rows", viewer.Token))

	editor, err := utils.NewAccessToken(secret, "e", utils.RoleEditor, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/v1/topics/dp/rows", editor.Token))
	assert.Equal(t, http.StatusOK, call(e, http.MethodPost, "/v1/topics/dp/reset", editor.Token))
}

func TestWriteLimitSeesEditor(t *testing.T) {
	var seen []string
	limit := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			seen = append(seen, middleware.EditorID(c))
			return next(c)
		}
	}
	e := echo.New()
	RegisterTracker(e.Group("/v1"), handler.NewTrackerHandler(tracker.NewService(mapStore{}), nil), secret, limit)

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/topics/dp/rows", ""))
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/v1/topics/dp/rows", ""))
	assert.Empty(t, seen)

	editor, err := utils.NewAccessToken(secret, "e-42", utils.RoleEditor, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/v1/topics/dp/rows", editor.Token))
	assert.Equal(t, []string{"e-42"}, seen)
}
