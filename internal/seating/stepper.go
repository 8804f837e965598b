package seating

import (
	"fmt"
	"math/big"
)

// Step is one revealed entry of the count table.
type Step struct {
	Index    int      `json:"index"`
	Value    *big.Int `json:"value"`
	Base     bool     `json:"base"`
	Prev1    *big.Int `json:"prev1,omitempty"`
	Prev2    *big.Int `json:"prev2,omitempty"`
	Used     bool     `json:"used"`
	Relation string   `json:"relation"`
}

// Stepper replays a count table from f(0) up to the longest segment, one
// entry at a time. It holds its own cursor and is not safe for concurrent
// use; create one per viewer.
type Stepper struct {
	table  []*big.Int
	last   int
	used   map[int]bool
	cursor int
}

// NewStepper prepares a replay over table for the given segments. The
// replay ends at the longest segment, not at the end of the table. An empty
// table gives a replay that is already done and whose steps are zero.
func NewStepper(table []*big.Int, segments []int) *Stepper {
	used := make(map[int]bool, len(segments))
	for _, L := range segments {
		if L >= 0 {
			used[L] = true
		}
	}
	last := MaxSegment(segments)
	if last > len(table)-1 {
		last = len(table) - 1
	}
	return &Stepper{table: table, last: last, used: used}
}

// Last is the final index the replay reaches.
func (s *Stepper) Last() int { return s.last }

// Current returns the step under the cursor.
func (s *Stepper) Current() Step { return s.at(s.cursor) }

// Next advances the cursor and returns the new step. At the end it returns
// the final step and false.
func (s *Stepper) Next() (Step, bool) {
	if s.cursor >= s.last {
		return s.at(s.cursor), false
	}
	s.cursor++
	return s.at(s.cursor), true
}

// Seek moves the cursor to i, clamped into [0, Last()].
func (s *Stepper) Seek(i int) Step {
	if i > s.last {
		i = s.last
	}
	if i < 0 {
		i = 0
	}
	s.cursor = i
	return s.at(i)
}

// Reset rewinds to f(0).
func (s *Stepper) Reset() { s.cursor = 0 }

// Done reports whether the cursor sits on the final step.
func (s *Stepper) Done() bool { return s.cursor >= s.last }

// Steps returns every step of the replay in order, independent of the cursor.
func (s *Stepper) Steps() []Step {
	out := make([]Step, 0, s.last+1)
	for i := 0; i <= s.last; i++ {
		out = append(out, s.at(i))
	}
	return out
}

func (s *Stepper) at(i int) Step {
	if i < 0 || i >= len(s.table) {
		return Step{}
	}
	st := Step{
		Index: i,
		Value: s.table[i],
		Base:  i < 2,
		Used:  s.used[i],
	}
	if st.Base {
		st.Relation = fmt.Sprintf("f(%d) = %s (base)", i, st.Value)
		return st
	}
	st.Prev1 = s.table[i-1]
	st.Prev2 = s.table[i-2]
	st.Relation = fmt.Sprintf("f(%d) = f(%d) + f(%d) = %s + %s = %s",
		i, i-1, i-2, st.Prev1, st.Prev2, st.Value)
	return st
}
