// Package party holds the small party-identity types shared by pkg/net,
// pkg/prep, and pkg/protocol/semi2k.
package party

import "sort"

// ID identifies a party in [0, P).
type ID uint32

// IDSlice is a set of party IDs, kept sorted for deterministic iteration.
type IDSlice []ID

// AllBut returns every ID in [0, n) except self, in ascending order.
func AllBut(n int, self ID) IDSlice {
	out := make(IDSlice, 0, n-1)
	for i := 0; i < n; i++ {
		if ID(i) != self {
			out = append(out, ID(i))
		}
	}
	return out
}

// All returns every ID in [0, n), in ascending order.
func All(n int) IDSlice {
	out := make(IDSlice, n)
	for i := range out {
		out[i] = ID(i)
	}
	return out
}

// Contains reports whether id is present in the slice.
func (s IDSlice) Contains(id ID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Sorted returns a sorted copy.
func (s IDSlice) Sorted() IDSlice {
	out := append(IDSlice(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
