package cleaning

import "sort"

// median returns the middle value of vs, averaging the two central values
// for even lengths. vs is not modified.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// quantile returns the p-quantile of vs using linear interpolation between
// order statistics, matching the convention of the dataframe tooling this
// dataset was originally profiled with.
func quantile(vs []float64, p float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// mode returns the most frequent non-empty value, breaking frequency ties
// by the lexicographically smallest value. The second return is false when
// vs has no non-empty values.
func mode(vs []string) (string, bool) {
	counts := make(map[string]int)
	for _, v := range vs {
		if v == "" {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return "", false
	}
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best, true
}
