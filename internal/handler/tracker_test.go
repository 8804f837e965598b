package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/study-ui/internal/model"
    "github.com/iliyamo/study-ui/internal/tracker"
)

type memStore struct {
    mu   sync.Mutex
    data map[string][]model.StudyRow
}

func (m *memStore) Load(_ context.Context, key string) ([]model.StudyRow, bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    rows, ok := m.data[key]
    return append([]model.StudyRow(nil), rows...), ok, nil
}

func (m *memStore) Save(_ context.Context, key string, rows []model.StudyRow) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.data[key] = append([]model.StudyRow(nil), rows...)
    return nil
}

func trackerServer(events EventPublisher) *echo.Echo {
    h := NewTrackerHandler(tracker.NewService(&memStore{data: map[string][]model.StudyRow{}}), events)
    h.Now = func() time.Time { return time.Date(2025, 8, 24, 9, 0, 0, 0, time.UTC) }
    e := echo.New()
    g := e.Group("/v1/topics/:topic")
    g.GET("/rows", h.List)
    g.GET("/rows.csv", h.Export)
    g.POST("/rows", h.Create)
    g.PATCH("/rows/:id", h.Update)
    g.DELETE("/rows/:id", h.Delete)
    g.POST("/rows/:id/reviews", h.ToggleReview)
    g.PUT("/rows/:id/date", h.SetDate)
    g.POST("/reset", h.Reset)
    g.POST("/import", h.Import)
    return e
}

type listBody struct {
    Topic  string           `json:"topic"`
    Label  string           `json:"label"`
    Items  []model.StudyRow `json:"items"`
    Facets tracker.Facets   `json:"facets"`
}

func list(t *testing.T, e *echo.Echo, target string) listBody {
    t.Helper()
    rec := serve(e, http.MethodGet, target, "")
    require.Equal(t, http.StatusOK, rec.Code)
    var body listBody
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    return body
}

func TestTrackerListAndFilter(t *testing.T) {
    e := trackerServer(nil)

    body := list(t, e, "/v1/topics/dp/rows")
    assert.Equal(t, "dp", body.Topic)
    assert.Equal(t, "다이나믹 프로그래밍", body.Label)
    assert.Len(t, body.Items, 4)
    assert.Equal(t, []string{"ALL", "L2", "L3"}, body.Facets.Levels)

    body = list(t, e, "/v1/topics/dp/rows?level=L3")
    require.Len(t, body.Items, 1)
    assert.Equal(t, "욕심쟁이 판다", body.Items[0].Title)

    body = list(t, e, "/v1/topics/nowhere/rows")
    assert.Equal(t, "dp", body.Topic)
}

func TestTrackerEditFlow(t *testing.T) {
    e := trackerServer(nil)

    rec := serve(e, http.MethodPost, "/v1/topics/graph/rows", "")
    require.Equal(t, http.StatusCreated, rec.Code)
    var row model.StudyRow
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
    assert.Equal(t, "2025년 8월 24일", row.Date)
    assert.Equal(t, "그래프", row.Topic)

    rec = serve(e, http.MethodPatch, "/v1/topics/graph/rows/"+row.ID, `{"title":"섬의 개수","level":"L3","reviews_text":"1일 3일"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
    assert.Equal(t, "섬의 개수", row.Title)
    assert.Equal(t, "L3", row.Level)
    assert.Equal(t, []string{"1일", "3일"}, row.Reviews)

    rec = serve(e, http.MethodPost, "/v1/topics/graph/rows/"+row.ID+"/reviews", `{"tag":"1일"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
    assert.Equal(t, []string{"3일"}, row.Reviews)
    assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodPost, "/v1/topics/graph/rows/"+row.ID+"/reviews", `{"tag":" "}`).Code)

    rec = serve(e, http.MethodPut, "/v1/topics/graph/rows/"+row.ID+"/date", `{"date":"2025-09-02"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
    assert.Equal(t, "2025년 9월 2일", row.Date)
    assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodPut, "/v1/topics/graph/rows/"+row.ID+"/date", `{"date":"soon"}`).Code)

    assert.Equal(t, http.StatusNoContent, serve(e, http.MethodDelete, "/v1/topics/graph/rows/"+row.ID, "").Code)
    assert.Equal(t, http.StatusNotFound, serve(e, http.MethodDelete, "/v1/topics/graph/rows/"+row.ID, "").Code)
    assert.Equal(t, http.StatusNotFound, serve(e, http.MethodPatch, "/v1/topics/graph/rows/nope", `{"title":"x"}`).Code)

    body := list(t, e, "/v1/topics/graph/rows")
    assert.Len(t, body.Items, 1)

    rec = serve(e, http.MethodPost, "/v1/topics/graph/reset", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, list(t, e, "/v1/topics/graph/rows").Items, 1)
}

func TestTrackerExport(t *testing.T) {
    e := trackerServer(nil)
    rec := serve(e, http.MethodGet, "/v1/topics/greedy/rows.csv", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
    assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "Study_Schedule_greedy.csv")

    lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
    require.Len(t, lines, 3)
    assert.Equal(t, "id,title,date,revisit,topic,level,reviews,link", lines[0])
    assert.Contains(t, lines[1], ",회의실 배정,2025년 8월 10일,,그리디,L2,1일,https://www.acmicpc.net/problem/1931")
}

func TestTrackerImportRawBody(t *testing.T) {
    events := &fakeEvents{}
    e := trackerServer(events)

    req := httptest.NewRequest(http.MethodPost, "/v1/topics/greedy/import",
        strings.NewReader("id,title,level\nx1,잃어버린 괄호,L2\n"))
    req.Header.Set(echo.HeaderContentType, "text/csv")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"added":1}`, rec.Body.String())

    items := list(t, e, "/v1/topics/greedy/rows").Items
    require.Len(t, items, 3)
    assert.Equal(t, "x1", items[0].ID)

    require.Eventually(t, func() bool {
        events.mu.Lock()
        defer events.mu.Unlock()
        return len(events.imported) == 1
    }, time.Second, 10*time.Millisecond)
    events.mu.Lock()
    assert.Equal(t, "greedy", events.imported[0].Topic)
    assert.Equal(t, "anon", events.imported[0].Editor)
    events.mu.Unlock()
}

func TestTrackerImportMultipart(t *testing.T) {
    e := trackerServer(nil)

    var buf bytes.Buffer
    mw := multipart.NewWriter(&buf)
    fw, err := mw.CreateFormFile("file", "rows.csv")
    require.NoError(t, err)
    _, err = fw.Write([]byte("id,title\na,A\nb,B\n"))
    require.NoError(t, err)
    require.NoError(t, mw.Close())

    req := httptest.NewRequest(http.MethodPost, "/v1/topics/dp/import", &buf)
    req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"added":2}`, rec.Body.String())

    items := list(t, e, "/v1/topics/dp/rows").Items
    require.Len(t, items, 6)
    assert.Equal(t, []string{"a", "b"}, []string{items[0].ID, items[1].ID})
}

func TestTrackerImportErrors(t *testing.T) {
    e := trackerServer(nil)

    var buf bytes.Buffer
    mw := multipart.NewWriter(&buf)
    require.NoError(t, mw.WriteField("other", "x"))
    require.NoError(t, mw.Close())
    req := httptest.NewRequest(http.MethodPost, "/v1/topics/dp/import", &buf)
    req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    req = httptest.NewRequest(http.MethodPost, "/v1/topics/dp/import", strings.NewReader("id,title\nx,a\"b\n"))
    req.Header.Set(echo.HeaderContentType, "text/csv")
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackerImportTooLarge(t *testing.T) {
    e := trackerServer(nil)

    var body strings.Builder
    body.WriteString("id,title\n")
    for i := 0; body.Len() <= maxImportBytes; i++ {
        fmt.Fprintf(&body, "row%06d,ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJKLMNOPQRSTUVWXYZ\n", i)
    }

    req := httptest.NewRequest(http.MethodPost, "/v1/topics/dp/import", strings.NewReader(body.String()))
    req.Header.Set(echo.HeaderContentType, "text/csv")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

    // Nothing was stored: the topic still holds only its defaults.
    items := list(t, e, "/v1/topics/dp/rows").Items
    assert.Len(t, items, 4)
}

func TestReadImportAtLimit(t *testing.T) {
    data, err := readImport(bytes.NewReader(bytes.Repeat([]byte("a"), maxImportBytes)))
    require.NoError(t, err)
    assert.Len(t, data, maxImportBytes)

    _, err = readImport(bytes.NewReader(bytes.Repeat([]byte("a"), maxImportBytes+1)))
    assert.ErrorIs(t, err, errImportTooLarge)
}
