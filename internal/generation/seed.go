package generation

import (
	"fmt"
	"hash/fnv"
)

// SubSeed derives the deterministic per-page seed for a content page from
// the request's base seed and the 1-based page index. The derivation is
// FNV-1a over "page:<base>:<index>", reinterpreted as int64 — pure, stable
// across runs and platforms, and independent for each index.
//
// This function is load-bearing for single-page regeneration: regenerating
// page i of a seeded request must produce bytes identical to page i of a
// full run, so the derivation can never change without invalidating every
// stored book.
func SubSeed(base int64, pageIndex int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "page:%d:%d", base, pageIndex)
	return int64(h.Sum64())
}
