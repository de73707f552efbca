// Package sync reconciles freshly produced code artifacts with the persisted
// record. Readers poll on an interval and writers debounce, so consistency
// rests on full-map writes plus content-hash deduplication.
package sync

import (
	"hash/fnv"
	"sort"

	"github.com/trainflow/strategy-engine/internal/storage"
)

// ContentHash fingerprints a strategy's code payload. It walks platforms in
// sorted order so two maps with equal contents always hash equal, letting
// readers detect "nothing changed" without a deep comparison.
func ContentHash(code storage.CodeMap) uint64 {
	keys := make([]string, 0, len(code))
	for k := range code {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(code[k]))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
