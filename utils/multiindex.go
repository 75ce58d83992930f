package utils

// OrderCounts converts a derivative multi-index (one dimension index
// per differentiation, repeats allowed) into per-dimension derivative
// orders.
func OrderCounts(b []int, numDim int) []int {
	counts := make([]int, numDim)
	for _, d := range b {
		counts[d]++
	}
	return counts
}
