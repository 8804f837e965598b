// Package seating counts the ways guests can be seated in a single row when
// some seats are fixed for VIPs. A guest may stay in their own seat or swap
// with a direct neighbour; VIP seats never move. The VIP seats split the row
// into independent free segments, and a free segment of length L admits f(L)
// arrangements where f follows the Fibonacci recurrence. The answer is the
// product of f over all segments.
package seating

import (
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// vipSeparators matches any run of separators accepted between VIP tokens.
var vipSeparators = regexp.MustCompile(`[ ,\r\n\t]+`)

// Result bundles every derived value of one computation pass.
type Result struct {
	N          int        `json:"n"`
	VIP        []int      `json:"vip"`
	Segments   []int      `json:"segments"`
	CountTable []*big.Int `json:"count_table"`
	Answer     *big.Int   `json:"answer"`
}

// ParseVIP turns free-form user input such as "4, 7" into a normalized VIP
// set for a row of n seats. Tokens that are not base-10 integers are dropped.
func ParseVIP(raw string, n int) []int {
	var positions []int
	for _, tok := range vipSeparators.Split(raw, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		positions = append(positions, v)
	}
	return NormalizeVIP(positions, n)
}

// NormalizeVIP keeps positions inside [1, n], removes duplicates and sorts
// the remainder ascending. The returned slice is never nil.
func NormalizeVIP(positions []int, n int) []int {
	seen := make(map[int]bool, len(positions))
	out := make([]int, 0, len(positions))
	for _, v := range positions {
		if v < 1 || v > n || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Segments returns the lengths of the free runs between consecutive VIP
// seats and the row ends. vip must be normalized for n. A row with no VIP
// seats is one segment of length n.
func Segments(n int, vip []int) []int {
	if n < 0 {
		n = 0
	}
	segs := make([]int, 0, len(vip)+1)
	prev := 0
	for _, v := range vip {
		segs = append(segs, v-prev-1)
		prev = v
	}
	return append(segs, n-prev)
}

// MaxSegment returns the longest segment, or 0 for an empty list.
func MaxSegment(segments []int) int {
	m := 0
	for _, L := range segments {
		if L > m {
			m = L
		}
	}
	return m
}

// CountTable builds f[0..maxLen] with f[0] = f[1] = 1 and
// f[i] = f[i-1] + f[i-2]. Indices 0 and 1 are always present.
func CountTable(maxLen int) []*big.Int {
	size := maxLen + 1
	if size < 2 {
		size = 2
	}
	f := make([]*big.Int, size)
	f[0] = big.NewInt(1)
	f[1] = big.NewInt(1)
	for i := 2; i < size; i++ {
		f[i] = new(big.Int).Add(f[i-1], f[i-2])
	}
	return f
}

// Answer multiplies f[L] over every segment. The product of no segments is 1.
// table must cover every segment length.
func Answer(segments []int, table []*big.Int) *big.Int {
	acc := big.NewInt(1)
	for _, L := range segments {
		acc.Mul(acc, table[L])
	}
	return acc
}

// Compute runs a full pass for n seats and an arbitrary list of VIP
// positions. Non-positive n is treated as an empty row.
func Compute(n int, positions []int) Result {
	if n < 0 {
		n = 0
	}
	vip := NormalizeVIP(positions, n)
	segs := Segments(n, vip)
	table := CountTable(MaxSegment(segs))
	return Result{
		N:          n,
		VIP:        vip,
		Segments:   segs,
		CountTable: table,
		Answer:     Answer(segs, table),
	}
}

// ComputeRaw is Compute for unparsed VIP input.
func ComputeRaw(n int, raw string) Result {
	if n < 0 {
		n = 0
	}
	return Compute(n, ParseVIP(raw, n))
}

// Formula renders the answer as a product, e.g. "f(3) × f(2) × f(2) = 12".
func (r Result) Formula() string {
	if len(r.Segments) == 0 || r.Answer == nil {
		return "1"
	}
	parts := make([]string, len(r.Segments))
	for i, L := range r.Segments {
		parts[i] = "f(" + strconv.Itoa(L) + ")"
	}
	return strings.Join(parts, " × ") + " = " + r.Answer.String()
}

// SegmentValues returns f[L] for each segment in order.
func (r Result) SegmentValues() []*big.Int {
	out := make([]*big.Int, len(r.Segments))
	for i, L := range r.Segments {
		out[i] = r.CountTable[L]
	}
	return out
}

// Sample inputs from the published problem statement. Their answer is 12.
const (
	SampleN        = 9
	SampleVIPInput = "4,7"
	SampleAnswer   = 12
)

// IsSample reports whether r was computed from the published sample input.
func (r Result) IsSample() bool {
	return r.N == SampleN && len(r.VIP) == 2 && r.VIP[0] == 4 && r.VIP[1] == 7
}
