// Package support holds the small cross-cutting pieces the runtime package
// shares with emitted code: tuple hashing for store indexes and history,
// value stringification for trace output, firing statistics, and a trace
// sink (spec.md §2's "Runtime: support (shared refs, xxhash, TIW
// stringification, statistics, trace)").
package support

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// TupleHash hashes an ordered sequence of constraint ids, used by History
// (spec.md §4.4.4); IndexedStore's buckets use KeyHash instead. Grounded on
// the original C++ runtime's CHR_XXHash,
// built on XXH32 (original_source/runtime/utils.hpp); this port uses the
// 64-bit xxhash for a larger keyspace.
func TupleHash(cids []int64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, id := range cids {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		d.Write(buf[:])
	}
	return d.Sum64()
}

// KeyHash hashes an index key made of arbitrary bound argument values, used
// by IndexedStore's begin_indexed (spec.md §4.3.4, §6.3). Values are
// stringified first so equal-but-differently-typed keys (e.g. int64(3) vs
// int(3)) still hash identically.
func KeyHash(key []any) uint64 {
	d := xxhash.New()
	for _, v := range key {
		d.WriteString(Stringify(v))
		d.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
	}
	return d.Sum64()
}
