package tracker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-ui/internal/model"
)

type memStore struct {
	data  map[string][]model.StudyRow
	saves int
	fail  error
}

func newMemStore() *memStore { return &memStore{data: map[string][]model.StudyRow{}} }

func (m *memStore) Load(_ context.Context, key string) ([]model.StudyRow, bool, error) {
	if m.fail != nil {
		return nil, false, m.fail
	}
	rows, ok := m.data[key]
	return append([]model.StudyRow(nil), rows...), ok, nil
}

func (m *memStore) Save(_ context.Context, key string, rows []model.StudyRow) error {
	m.saves++
	m.data[key] = append([]model.StudyRow(nil), rows...)
	return nil
}

func TestServiceSeedsDefaultsOnce(t *testing.T) {
	st := newMemStore()
	svc := NewService(st)
	ctx := context.Background()

	first, err := svc.Rows(ctx, "greedy")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "회의실 배정", first[0].Title)
	assert.Equal(t, 1, st.saves)

	second, err := svc.Rows(ctx, "#/GREEDY")
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, st.saves)
}

func TestServiceAddPrepends(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()
	now := time.Date(2025, time.August, 24, 15, 0, 0, 0, time.UTC)

	row, err := svc.Add(ctx, "dp", now)
	require.NoError(t, err)
	assert.Equal(t, "새 문제", row.Title)
	assert.Equal(t, "2025년 8월 24일", row.Date)
	assert.Equal(t, []string{"1일"}, row.Reviews)
	assert.Equal(t, "다이나믹 프로그래밍", row.Topic)

	rows, err := svc.Rows(ctx, "dp")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, row.ID, rows[0].ID)
}

func TestServiceUpdateToggleRemove(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()
	rows, err := svc.Rows(ctx, "graph")
	require.NoError(t, err)
	id := rows[0].ID

	title, reviews := "DFS", "1일|3일, 1주일"
	updated, err := svc.Update(ctx, "graph", id, RowPatch{Title: &title, ReviewsText: &reviews})
	require.NoError(t, err)
	assert.Equal(t, "DFS", updated.Title)
	assert.Equal(t, []string{"1일", "3일", "1주일"}, updated.Reviews)
	assert.Equal(t, "L1", updated.Level)

	updated, err = svc.ToggleReview(ctx, "graph", id, "3일")
	require.NoError(t, err)
	assert.Equal(t, []string{"1일", "1주일"}, updated.Reviews)

	updated, err = svc.ToggleReview(ctx, "graph", id, "2주일")
	require.NoError(t, err)
	assert.Equal(t, []string{"1일", "1주일", "2주일"}, updated.Reviews)

	updated, err = svc.ToggleReview(ctx, "graph", id, ClearReviewsTag)
	require.NoError(t, err)
	assert.Empty(t, updated.Reviews)

	updated, err = svc.SetDate(ctx, "graph", id, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025년 9월 1일", updated.Date)

	require.NoError(t, svc.Remove(ctx, "graph", id))
	rows, err = svc.Rows(ctx, "graph")
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, svc.Remove(ctx, "graph", id), ErrRowNotFound)
	_, err = svc.Update(ctx, "graph", "missing", RowPatch{})
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestServiceReset(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()
	rows, err := svc.Rows(ctx, "dp")
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "dp", rows[0].ID))

	reset, err := svc.Reset(ctx, "dp")
	require.NoError(t, err)
	assert.Len(t, reset, 4)
	assert.NotEqual(t, rows[0].ID, reset[0].ID)
}

func TestServiceImportMergesAndDedups(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()
	rows, err := svc.Rows(ctx, "greedy")
	require.NoError(t, err)

	csvText := "id,title,level,reviews\n" +
		rows[0].ID + ",dup,L1,1일\n" +
		"new-1,\"Coin, again\",L3,1일 3일\n" +
		"new-1,repeat,L3,\n" +
		"\n" +
		",no id,,\n"
	added, err := svc.Import(ctx, "greedy", strings.NewReader(csvText))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	after, err := svc.Rows(ctx, "greedy")
	require.NoError(t, err)
	require.Len(t, after, 4)
	assert.Equal(t, "new-1", after[0].ID)
	assert.Equal(t, "Coin, again", after[0].Title)
	assert.Equal(t, []string{"1일", "3일"}, after[0].Reviews)
	assert.Equal(t, "그리디", after[0].Topic)
	assert.Equal(t, "#", after[0].Link)
	assert.Equal(t, "no id", after[1].Title)
	assert.NotEmpty(t, after[1].ID)
	assert.Equal(t, "L2", after[1].Level)
	assert.Equal(t, rows[0].ID, after[2].ID)
	assert.Equal(t, "회의실 배정", after[2].Title)
}

func TestServiceExportRoundTrip(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()
	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, "dp", &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "id,title,date,revisit,topic,level,reviews,link\n"))

	decoded, err := DecodeCSV(&buf)
	require.NoError(t, err)
	rows, err := svc.Rows(ctx, "dp")
	require.NoError(t, err)
	assert.Equal(t, rows, decoded)
}

func TestServiceListFilters(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	got, facets, err := svc.List(ctx, "dp", Filter{Level: "L3"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "욕심쟁이 판다", got[0].Title)
	assert.Equal(t, []string{All, "L2", "L3"}, facets.Levels)
	assert.Equal(t, []string{All, "1일", "3일", "1주일"}, facets.Reviews)

	got, _, err = svc.List(ctx, "dp", Filter{Review: "1주일"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "극장 좌석", got[0].Title)

	got, _, err = svc.List(ctx, "dp", Filter{Level: All, Review: All, Query: "  3일차 "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "연속 부분 수열 합의 개수", got[0].Title)
}

func TestServiceStoreError(t *testing.T) {
	st := newMemStore()
	st.fail = errors.New("boom")
	svc := NewService(st)
	_, err := svc.Rows(context.Background(), "dp")
	assert.EqualError(t, err, "boom")
}
