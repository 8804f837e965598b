package handler

import (
    "bytes"
    "context"
    "errors"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/study-ui/internal/middleware"
    q "github.com/iliyamo/study-ui/internal/queue"
    "github.com/iliyamo/study-ui/internal/repository"
    "github.com/iliyamo/study-ui/internal/tracker"
)

// maxImportBytes caps an uploaded CSV.
const maxImportBytes = 2 << 20

// TrackerHandler serves the study schedule of each topic.
type TrackerHandler struct {
    Svc    *tracker.Service
    Events EventPublisher
    Now    func() time.Time
}

// NewTrackerHandler panics on a nil service; events may be nil.
func NewTrackerHandler(svc *tracker.Service, events EventPublisher) *TrackerHandler {
    if svc == nil {
        panic("nil service passed to NewTrackerHandler")
    }
    return &TrackerHandler{Svc: svc, Events: events, Now: time.Now}
}

// trackerError maps service errors onto HTTP responses.
func trackerError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, tracker.ErrRowNotFound):
        return c.JSON(http.StatusNotFound, map[string]string{"error": "row not found"})
    case errors.Is(err, tracker.ErrBadCSV):
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, map[string]string{"error": "duplicate row id"})
    }
    c.Logger().Errorf("tracker: %v", err)
    return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
}

// List handles GET /v1/topics/:topic/rows with optional level, review and q
// filters.
func (h *TrackerHandler) List(c echo.Context) error {
    topic := tracker.ResolveTopic(c.Param("topic"))
    f := tracker.Filter{
        Level:  c.QueryParam("level"),
        Review: c.QueryParam("review"),
        Query:  c.QueryParam("q"),
    }
    items, facets, err := h.Svc.List(c.Request().Context(), topic, f)
    if err != nil {
        return trackerError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{
        "topic":  topic,
        "label":  tracker.TopicLabel(topic),
        "items":  items,
        "facets": facets,
    })
}

// Export handles GET /v1/topics/:topic/rows.csv.
func (h *TrackerHandler) Export(c echo.Context) error {
    topic := tracker.ResolveTopic(c.Param("topic"))
    var buf bytes.Buffer
    if err := h.Svc.Export(c.Request().Context(), topic, &buf); err != nil {
        return trackerError(c, err)
    }
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="Study_Schedule_`+topic+`.csv"`)
    return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Create handles POST /v1/topics/:topic/rows and prepends a new row.
func (h *TrackerHandler) Create(c echo.Context) error {
    row, err := h.Svc.Add(c.Request().Context(), tracker.ResolveTopic(c.Param("topic")), h.Now())
    if err != nil {
        return trackerError(c, err)
    }
    return c.JSON(http.StatusCreated, row)
}

// Update handles PATCH /v1/topics/:topic/rows/:id.
func (h *TrackerHandler) Update(c echo.Context) error {
    var patch tracker.RowPatch
    if err := c.Bind(&patch); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    row, err := h.Svc.Update(c.Request().Context(), tracker.ResolveTopic(c.Param("topic")), c.Param("id"), patch)
    if err != nil {
        return trackerError(c, err)
    }
    return c.JSON(http.StatusOK, row)
}

// Delete handles DELETE /v1/topics/:topic/rows/:id.
func (h *TrackerHandler) Delete(c echo.Context) error {
    if err := h.Svc.Remove(c.Request().Context(), tracker.ResolveTopic(c.Param("topic")), c.Param("id")); err != nil {
        return trackerError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ToggleReview handles POST /v1/topics/:topic/rows/:id/reviews with body
// {"tag": "3일"}.  The tag "__clear__" removes all tags.
func (h *TrackerHandler) ToggleReview(c echo.Context) error {
    var body struct {
        Tag string `json:"tag"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    tag := strings.TrimSpace(body.Tag)
    if tag == "" {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "tag is required"})
    }
    row, err := h.Svc.ToggleReview(c.Request().Context(), tracker.ResolveTopic(c.Param("topic")), c.Param("id"), tag)
    if err != nil {
        return trackerError(c, err)
    }
    return c.JSON(http.StatusOK, row)
}

// SetDate handles PUT /v1/topics/:topic/rows/:id/date with body
// {"date": "2025-08-23"} (Korean long form is accepted too).
func (h *TrackerHandler) SetDate(c echo.Context) error {
    var body struct {
        Date string `json:"date"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    d, ok := tracker.ParseKoDate(body.Date)
    if !ok {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date"})
    }
    row, err := h.Svc.SetDate(c.Request().Context(), tracker.ResolveTopic(c.Param("topic")), c.Param("id"), d)
    if err != nil {
        return trackerError(c, err)
    }
    return c.JSON(http.StatusOK, row)
}

// Reset handles POST /v1/topics/:topic/reset.
func (h *TrackerHandler) Reset(c echo.Context) error {
    rows, err := h.Svc.Reset(c.Request().Context(), tracker.ResolveTopic(c.Param("topic")))
    if err != nil {
        return trackerError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"items": rows})
}

// Import handles POST /v1/topics/:topic/import.  The CSV is read from the
// multipart field "file" or, for any other content type, the raw body.
func (h *TrackerHandler) Import(c echo.Context) error {
    topic := tracker.ResolveTopic(c.Param("topic"))
    src, err := importSource(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    defer src.Close()

    data, err := readImport(src)
    if errors.Is(err, errImportTooLarge) {
        return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
    }
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "read upload: " + err.Error()})
    }

    added, err := h.Svc.Import(c.Request().Context(), topic, bytes.NewReader(data))
    if err != nil {
        return trackerError(c, err)
    }
    ev := q.StudyImportedEvent{
        Topic:      topic,
        Added:      added,
        Editor:     middleware.EditorID(c),
        ImportedAt: h.Now().UTC().Format(time.RFC3339),
    }
    publishAsync(h.Events, func(ctx context.Context, p EventPublisher) error {
        return p.PublishStudyImported(ctx, ev)
    })
    return c.JSON(http.StatusOK, map[string]int{"added": added})
}

var errImportTooLarge = errors.New("csv exceeds 2 MiB")

// readImport buffers the whole upload.  A CSV cut at the limit would still
// parse, so anything past maxImportBytes is rejected rather than truncated.
func readImport(src io.Reader) ([]byte, error) {
    data, err := io.ReadAll(io.LimitReader(src, maxImportBytes+1))
    if err != nil {
        return nil, err
    }
    if len(data) > maxImportBytes {
        return nil, errImportTooLarge
    }
    return data, nil
}

func importSource(c echo.Context) (io.ReadCloser, error) {
    ct := c.Request().Header.Get(echo.HeaderContentType)
    if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
        return c.Request().Body, nil
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return nil, errors.New("file is required")
    }
    return fh.Open()
}
