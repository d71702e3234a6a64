package analyzer

// combinations calls fn with every r-combination of {0..n-1} in
// lexicographic order. The slice passed to fn is reused between calls
// and must not be retained. Enumeration stops early when fn returns
// true; the return value reports whether it was stopped.
func combinations(n, r int, fn func(idx []int) bool) bool {
	if r < 0 || r > n {
		return false
	}
	if r == 0 {
		return fn(nil)
	}

	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	for {
		if fn(idx) {
			return true
		}
		// Advance: bump the rightmost index that has headroom.
		i := r - 1
		for i >= 0 && idx[i] == i+n-r {
			i--
		}
		if i < 0 {
			return false
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
