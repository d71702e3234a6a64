// Package similarity scores how much textual content two documents
// share. The measure is a Ratcliff/Obershelp matching-blocks ratio
// computed over word tokens: 2*M/T where M is the total number of
// matched tokens across recursively found longest common blocks and T
// is the combined token count.
//
// The ratio is computed with a fixed argument direction (a first); in
// practice the measure is near-symmetric. It is monotonic in shared
// content and satisfies Ratio(s, s) == 1 for any s.
package similarity

import "strings"

// Ratio returns a similarity score in [0, 1] between two texts.
// Two empty texts score 1; an empty text against a non-empty one
// scores 0.
func Ratio(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	m := newMatcher(ta, tb)
	matched := 0
	for _, bl := range m.matchingBlocks() {
		matched += bl.size
	}
	return 2 * float64(matched) / float64(len(ta)+len(tb))
}

type block struct {
	a, b, size int
}

// matcher finds matching blocks between two token sequences. The
// second sequence is indexed token→positions so longest-match lookups
// only walk positions that can extend a match.
type matcher struct {
	a, b []string
	b2j  map[string][]int
}

func newMatcher(a, b []string) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[string][]int, len(b))}
	for j, tok := range b {
		m.b2j[tok] = append(m.b2j[tok], j)
	}
	return m
}

// longestMatch finds the longest block of equal tokens with
// a[besti:besti+size] == b[bestj:bestj+size] inside the given windows.
// Ties resolve to the earliest block in a, then in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) block {
	best := block{a: alo, b: blo}
	// j2len[j] = length of the longest match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = next
	}
	return best
}

// matchingBlocks returns all matched blocks, found by recursively
// splitting the windows around each longest match.
func (m *matcher) matchingBlocks() []block {
	type window struct{ alo, ahi, blo, bhi int }
	queue := []window{{0, len(m.a), 0, len(m.b)}}
	var blocks []block
	for len(queue) > 0 {
		w := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		bl := m.longestMatch(w.alo, w.ahi, w.blo, w.bhi)
		if bl.size == 0 {
			continue
		}
		blocks = append(blocks, bl)
		queue = append(queue,
			window{w.alo, bl.a, w.blo, bl.b},
			window{bl.a + bl.size, w.ahi, bl.b + bl.size, w.bhi})
	}
	return blocks
}
