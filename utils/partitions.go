package utils

// SetPartitions enumerates every set partition of the entries of b,
// treating equal entries at distinct positions as distinct. Each
// partition is a collection of disjoint non-empty blocks carrying the
// entry values, and every partition of the positions appears exactly
// once. The number of partitions of n entries is the Bell number B(n);
// the single partition of zero entries is the empty one.
//
// Enumeration walks the restricted growth strings: s[i] assigns
// position i to a block, with s[i] at most one past the largest block
// index used so far.
func SetPartitions(b []int) [][][]int {
	n := len(b)
	var out [][][]int
	s := make([]int, n)
	var rec func(i, used int)
	rec = func(i, used int) {
		if i == n {
			part := make([][]int, used)
			for pos, blk := range s {
				part[blk] = append(part[blk], b[pos])
			}
			out = append(out, part)
			return
		}
		for blk := 0; blk <= used; blk++ {
			s[i] = blk
			if blk == used {
				rec(i+1, used+1)
			} else {
				rec(i+1, used)
			}
		}
	}
	rec(0, 0)
	return out
}
