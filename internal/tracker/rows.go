package tracker

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/study-ui/internal/model"
)

var reviewSeparators = regexp.MustCompile(`[|,\s]+`)

// ParseReviews splits review tags separated by pipes, commas or whitespace.
func ParseReviews(s string) []string {
	out := []string{}
	for _, tag := range reviewSeparators.Split(s, -1) {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// NewID returns a fresh row identifier.
func NewID() string { return uuid.NewString() }

// Normalize fills defaults on every row: a new id when missing, placeholder
// title, level L2, link "#" and the given topic label when the row has none.
func Normalize(rows []model.StudyRow, topicLabel string) []model.StudyRow {
	out := make([]model.StudyRow, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			r.ID = NewID()
		}
		if r.Title == "" {
			r.Title = "제목"
		}
		if r.Topic == "" {
			r.Topic = topicLabel
		}
		if r.Level == "" {
			r.Level = "L2"
		}
		if r.Link == "" {
			r.Link = "#"
		}
		if r.Reviews == nil {
			r.Reviews = []string{}
		}
		out[i] = r
	}
	return out
}

// indexOf returns the position of the row with id, or -1.
func indexOf(rows []model.StudyRow, id string) int {
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}

// toggleTag adds tag when absent and removes it when present. The special
// tag "__clear__" empties the list.
func toggleTag(tags []string, tag string) []string {
	if tag == ClearReviewsTag {
		return []string{}
	}
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}

// ClearReviewsTag passed to ToggleReview clears every tag of the row.
const ClearReviewsTag = "__clear__"
