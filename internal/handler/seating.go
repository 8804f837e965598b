package handler

import (
    "context"
    "math/big"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/study-ui/internal/config"
    q "github.com/iliyamo/study-ui/internal/queue"
    "github.com/iliyamo/study-ui/internal/seating"
)

// SeatingHandler serves the seating counter.
type SeatingHandler struct {
    Cfg    config.SeatingConfig
    Events EventPublisher
}

// NewSeatingHandler builds a handler; events may be nil.
func NewSeatingHandler(cfg config.SeatingConfig, events EventPublisher) *SeatingHandler {
    return &SeatingHandler{Cfg: cfg, Events: events}
}

type seatingResponse struct {
    seating.Result
    SegmentValues []*big.Int `json:"segment_values"`
    Formula       string     `json:"formula"`
    Sample        bool       `json:"sample"`
}

func newSeatingResponse(r seating.Result) seatingResponse {
    return seatingResponse{
        Result:        r,
        SegmentValues: r.SegmentValues(),
        Formula:       r.Formula(),
        Sample:        r.IsSample(),
    }
}

// queryInput reads n and vip from the query string.  With neither present
// the configured defaults apply.
func (h *SeatingHandler) queryInput(c echo.Context) (int, string, error) {
    rawN := strings.TrimSpace(c.QueryParam("n"))
    vip := c.QueryParam("vip")
    if rawN == "" && vip == "" {
        return h.Cfg.DefaultSeats, h.Cfg.DefaultVIP, nil
    }
    if rawN == "" {
        return h.Cfg.DefaultSeats, vip, nil
    }
    n, err := strconv.Atoi(rawN)
    if err != nil {
        return 0, "", err
    }
    return h.Cfg.Clamp(n), vip, nil
}

// Get handles GET /v1/seating?n=9&vip=4,7.
func (h *SeatingHandler) Get(c echo.Context) error {
    n, vip, err := h.queryInput(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid n"})
    }
    res := seating.ComputeRaw(n, vip)
    h.emit(res)
    return c.JSON(http.StatusOK, newSeatingResponse(res))
}

// Compute handles POST /v1/seating/compute.  The body carries n and either
// a list of positions (vip) or free-form text (vip_input).
func (h *SeatingHandler) Compute(c echo.Context) error {
    var body struct {
        N        *int   `json:"n"`
        VIP      []int  `json:"vip"`
        VIPInput string `json:"vip_input"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if body.N == nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "n is required"})
    }
    n := h.Cfg.Clamp(*body.N)
    var res seating.Result
    if body.VIP != nil {
        res = seating.Compute(n, body.VIP)
    } else {
        res = seating.ComputeRaw(n, body.VIPInput)
    }
    h.emit(res)
    return c.JSON(http.StatusOK, newSeatingResponse(res))
}

// Steps handles GET /v1/seating/steps.  With upto the replay stops at that
// index (clamped), as a paused animation would.
func (h *SeatingHandler) Steps(c echo.Context) error {
    n, vip, err := h.queryInput(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid n"})
    }
    res := seating.ComputeRaw(n, vip)
    st := seating.NewStepper(res.CountTable, res.Segments)

    steps := st.Steps()
    if raw := c.QueryParam("upto"); raw != "" {
        upto, err := strconv.Atoi(raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upto"})
        }
        steps = steps[:st.Seek(upto).Index+1]
    } else {
        st.Seek(st.Last())
    }
    return c.JSON(http.StatusOK, map[string]any{
        "n":        res.N,
        "vip":      res.VIP,
        "segments": res.Segments,
        "last":     st.Last(),
        "current":  st.Current(),
        "done":     st.Done(),
        "steps":    steps,
    })
}

// Sample handles GET /v1/seating/sample.
func (h *SeatingHandler) Sample(c echo.Context) error {
    res := seating.ComputeRaw(seating.SampleN, seating.SampleVIPInput)
    return c.JSON(http.StatusOK, newSeatingResponse(res))
}

// emit publishes seating.computed.  Responses replayed by the cache
// middleware never reach the handler, so the event counts computations,
// not requests served.
func (h *SeatingHandler) emit(res seating.Result) {
    ev := q.SeatingComputedEvent{
        N:          res.N,
        VIP:        res.VIP,
        Segments:   res.Segments,
        Answer:     res.Answer.String(),
        ComputedAt: time.Now().UTC().Format(time.RFC3339),
    }
    publishAsync(h.Events, func(ctx context.Context, p EventPublisher) error {
        return p.PublishSeatingComputed(ctx, ev)
    })
}
