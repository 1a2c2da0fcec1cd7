// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Distinct removes duplicate values from a slice while preserving
// first-occurrence order. A nil slice yields an empty result.
func Distinct[T comparable](values []T) []T {
	return Deduplicate(values, func(v T) T { return v })
}

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	blocks := []timetable.Block{{Title: "5CS-PT1-00"}, {Title: "5CS-SE1-00"}, {Title: "5CS-PT1-00"}}
//	unique := sliceutil.Deduplicate(blocks, func(b timetable.Block) string { return b.Title })
//	// Result: [{Title: "5CS-PT1-00"}, {Title: "5CS-SE1-00"}]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return []T{}
	}

	seen := make(map[K]bool, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}

	return result
}
