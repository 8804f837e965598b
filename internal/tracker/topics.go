package tracker

import (
	"strings"

	"github.com/iliyamo/study-ui/internal/model"
)

// Topic keys addressable in URLs.
const (
	TopicDP     = "dp"
	TopicGreedy = "greedy"
	TopicGraph  = "graph"
)

// ResolveTopic maps a loosely written topic key onto a known one. Anything
// unrecognised falls back to dp.
func ResolveTopic(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.Contains(k, TopicGreedy):
		return TopicGreedy
	case strings.Contains(k, TopicGraph):
		return TopicGraph
	}
	return TopicDP
}

// TopicLabel is the display label stored on rows of the topic.
func TopicLabel(key string) string {
	switch ResolveTopic(key) {
	case TopicGreedy:
		return "그리디"
	case TopicGraph:
		return "그래프"
	}
	return "다이나믹 프로그래밍"
}

// StorageKey is the store key holding the topic's rows.
func StorageKey(key string) string {
	return "studyRows:" + ResolveTopic(key)
}

// DefaultRows returns a fresh copy of the seed rows for a topic. IDs are
// left empty and get assigned on normalization.
func DefaultRows(key string) []model.StudyRow {
	src := defaultRows[ResolveTopic(key)]
	out := make([]model.StudyRow, len(src))
	for i, r := range src {
		r.Reviews = append([]string(nil), r.Reviews...)
		out[i] = r
	}
	return out
}

var defaultRows = map[string][]model.StudyRow{
	TopicDP: {
		{Title: "가장 큰 증가하는 부분 수열", Date: "2025년 8월 23일", Revisit: "👀 1주일차 복습!", Topic: "다이나믹 프로그래밍", Level: "L2", Reviews: []string{"1일", "3일"}, Link: "https://www.acmicpc.net/problem/11053"},
		{Title: "연속 부분 수열 합의 개수", Date: "2025년 8월 23일", Revisit: "👀 3일차 복습!", Topic: "다이나믹 프로그래밍", Level: "L2", Reviews: []string{"1일"}, Link: "#"},
		{Title: "극장 좌석", Date: "2025년 8월 20일", Topic: "다이나믹 프로그래밍", Level: "L2", Reviews: []string{"1일", "3일", "1주일"}, Link: "https://www.acmicpc.net/problem/2302"},
		{Title: "욕심쟁이 판다", Date: "2025년 8월 18일", Revisit: "👀 1주일차 복습!", Topic: "다이나믹 프로그래밍", Level: "L3", Reviews: []string{"1일"}, Link: "https://www.acmicpc.net/problem/1937"},
	},
	TopicGreedy: {
		{Title: "회의실 배정", Date: "2025년 8월 10일", Topic: "그리디", Level: "L2", Reviews: []string{"1일"}, Link: "https://www.acmicpc.net/problem/1931"},
		{Title: "동전 0", Date: "2025년 8월 10일", Topic: "그리디", Level: "L1", Reviews: []string{"1일", "3일"}, Link: "https://www.acmicpc.net/problem/11047"},
	},
	TopicGraph: {
		{Title: "DFS와 BFS", Date: "2025년 8월 12일", Revisit: "👀 3일차 복습!", Topic: "그래프", Level: "L1", Reviews: []string{"1일", "3일"}, Link: "https://www.acmicpc.net/problem/1260"},
	},
}
