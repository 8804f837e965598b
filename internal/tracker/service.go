// Package tracker implements the study schedule: ordered per-topic lists of
// study rows with editing, filtering and CSV import/export. Persistence is
// delegated to a Store keyed by StorageKey.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iliyamo/study-ui/internal/model"
)

// ErrRowNotFound is returned when an id does not exist in the topic.
var ErrRowNotFound = errors.New("study row not found")

// Store persists the full row list of a key. Load reports found=false for
// a key that was never saved.
type Store interface {
	Load(ctx context.Context, key string) (rows []model.StudyRow, found bool, err error)
	Save(ctx context.Context, key string, rows []model.StudyRow) error
}

// RowPatch carries the editable fields of a row. Nil fields are left as is.
// ReviewsText is parsed with ParseReviews.
type RowPatch struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Revisit     *string `json:"revisit"`
	Topic       *string `json:"topic"`
	Level       *string `json:"level"`
	ReviewsText *string `json:"reviews_text"`
	Link        *string `json:"link"`
}

// Service is the tracker's use-case layer. Mutations are serialized so a
// read-modify-write of one topic never interleaves with another.
type Service struct {
	store Store
	mu    sync.Mutex
}

// NewService wraps a store.
func NewService(store Store) *Service {
	if store == nil {
		panic("nil store passed to tracker.NewService")
	}
	return &Service{store: store}
}

// Rows returns every row of the topic. The first read of a topic saves its
// default rows so their ids stay stable.
func (s *Service) Rows(ctx context.Context, topic string) ([]model.StudyRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, topic)
}

func (s *Service) load(ctx context.Context, topic string) ([]model.StudyRow, error) {
	key := StorageKey(topic)
	rows, found, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return Normalize(rows, TopicLabel(topic)), nil
	}
	rows = Normalize(DefaultRows(topic), TopicLabel(topic))
	if err := s.store.Save(ctx, key, rows); err != nil {
		return nil, fmt.Errorf("seed %s: %w", key, err)
	}
	return rows, nil
}

// List returns the rows passing f together with the facets of all rows.
func (s *Service) List(ctx context.Context, topic string, f Filter) ([]model.StudyRow, Facets, error) {
	rows, err := s.Rows(ctx, topic)
	if err != nil {
		return nil, Facets{}, err
	}
	return f.Apply(rows), FacetsOf(rows), nil
}

// Add prepends a placeholder row dated now and returns it.
func (s *Service) Add(ctx context.Context, topic string, now time.Time) (model.StudyRow, error) {
	row := model.StudyRow{
		ID:      NewID(),
		Title:   "새 문제",
		Date:    FormatKoDate(now),
		Topic:   TopicLabel(topic),
		Level:   "L2",
		Reviews: []string{"1일"},
		Link:    "#",
	}
	err := s.mutate(ctx, topic, func(rows []model.StudyRow) ([]model.StudyRow, error) {
		return append([]model.StudyRow{row}, rows...), nil
	})
	if err != nil {
		return model.StudyRow{}, err
	}
	return row, nil
}

// Update applies p to the row with id.
func (s *Service) Update(ctx context.Context, topic, id string, p RowPatch) (model.StudyRow, error) {
	return s.edit(ctx, topic, id, func(r *model.StudyRow) {
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&r.Title, p.Title)
		set(&r.Date, p.Date)
		set(&r.Revisit, p.Revisit)
		set(&r.Topic, p.Topic)
		set(&r.Level, p.Level)
		set(&r.Link, p.Link)
		if p.ReviewsText != nil {
			r.Reviews = ParseReviews(*p.ReviewsText)
		}
	})
}

// Remove deletes the row with id.
func (s *Service) Remove(ctx context.Context, topic, id string) error {
	return s.mutate(ctx, topic, func(rows []model.StudyRow) ([]model.StudyRow, error) {
		i := indexOf(rows, id)
		if i < 0 {
			return nil, ErrRowNotFound
		}
		return append(rows[:i:i], rows[i+1:]...), nil
	})
}

// ToggleReview flips a review tag on the row. ClearReviewsTag empties it.
func (s *Service) ToggleReview(ctx context.Context, topic, id, tag string) (model.StudyRow, error) {
	return s.edit(ctx, topic, id, func(r *model.StudyRow) {
		r.Reviews = toggleTag(r.Reviews, tag)
	})
}

// SetDate stores d on the row in Korean long form.
func (s *Service) SetDate(ctx context.Context, topic, id string, d time.Time) (model.StudyRow, error) {
	return s.edit(ctx, topic, id, func(r *model.StudyRow) {
		r.Date = FormatKoDate(d)
	})
}

// Reset replaces the topic's rows with its defaults.
func (s *Service) Reset(ctx context.Context, topic string) ([]model.StudyRow, error) {
	var out []model.StudyRow
	err := s.mutate(ctx, topic, func([]model.StudyRow) ([]model.StudyRow, error) {
		out = Normalize(DefaultRows(topic), TopicLabel(topic))
		return out, nil
	})
	return out, err
}

// Import decodes CSV rows and puts them above the existing ones. A row
// whose id is already present, or repeats an earlier imported id, is
// skipped. It returns how many rows were added.
func (s *Service) Import(ctx context.Context, topic string, r io.Reader) (int, error) {
	parsed, err := DecodeCSV(r)
	if err != nil {
		return 0, err
	}
	parsed = Normalize(parsed, TopicLabel(topic))
	added := 0
	err = s.mutate(ctx, topic, func(rows []model.StudyRow) ([]model.StudyRow, error) {
		seen := make(map[string]bool, len(rows)+len(parsed))
		for _, r := range rows {
			seen[r.ID] = true
		}
		merged := make([]model.StudyRow, 0, len(rows)+len(parsed))
		for _, r := range parsed {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			merged = append(merged, r)
		}
		added = len(merged)
		return append(merged, rows...), nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Export writes every row of the topic as CSV.
func (s *Service) Export(ctx context.Context, topic string, w io.Writer) error {
	rows, err := s.Rows(ctx, topic)
	if err != nil {
		return err
	}
	return EncodeCSV(w, rows)
}

func (s *Service) edit(ctx context.Context, topic, id string, fn func(*model.StudyRow)) (model.StudyRow, error) {
	var out model.StudyRow
	err := s.mutate(ctx, topic, func(rows []model.StudyRow) ([]model.StudyRow, error) {
		i := indexOf(rows, id)
		if i < 0 {
			return nil, ErrRowNotFound
		}
		fn(&rows[i])
		out = rows[i]
		return rows, nil
	})
	return out, err
}

func (s *Service) mutate(ctx context.Context, topic string, fn func([]model.StudyRow) ([]model.StudyRow, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.load(ctx, topic)
	if err != nil {
		return err
	}
	next, err := fn(rows)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, StorageKey(topic), next)
}
