package crud

import "github.com/mesh-intelligence/farmkeeper/pkg/types"

// NextID returns the identifier for a new record: one more than the largest
// Id in records, or 1 when records is empty. Ids freed by deletion are reused
// only when they were the largest. The result is valid only against the
// snapshot passed in, so callers hold the collection lock.
func NextID[T types.Entity](records []T) int {
	max := 0
	for _, r := range records {
		if id := r.GetID(); id > max {
			max = id
		}
	}
	return max + 1
}
