package tracker

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iliyamo/study-ui/internal/model"
)

// ErrBadCSV wraps every CSV decoding failure.
var ErrBadCSV = errors.New("malformed csv")

var csvHeader = []string{"id", "title", "date", "revisit", "topic", "level", "reviews", "link"}

// EncodeCSV writes rows with a header line. Review tags are joined with a
// single space.
func EncodeCSV(w io.Writer, rows []model.StudyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.ID, r.Title, r.Date, r.Revisit, r.Topic, r.Level, strings.Join(r.Reviews, " "), r.Link}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads rows by header name. Unknown columns are ignored and
// missing ones read as empty. Blank lines are skipped. An empty input
// yields no rows. Rows without an id get a fresh one.
func DecodeCSV(r io.Reader) ([]model.StudyRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var idx map[string]int
	var rows []model.StudyRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadCSV, err)
		}
		if blankRecord(rec) {
			continue
		}
		if idx == nil {
			idx = make(map[string]int, len(rec))
			for i, h := range rec {
				idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
			}
			continue
		}
		get := func(k string) string {
			i, ok := idx[k]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		id := get("id")
		if id == "" {
			id = NewID()
		}
		rows = append(rows, model.StudyRow{
			ID:      id,
			Title:   get("title"),
			Date:    get("date"),
			Revisit: get("revisit"),
			Topic:   get("topic"),
			Level:   get("level"),
			Reviews: ParseReviews(get("reviews")),
			Link:    get("link"),
		})
	}
	return rows, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
