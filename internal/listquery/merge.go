package listquery

// MergeByID appends more onto existing, skipping rows whose id is already
// present. "Load more" pagination is additive, and a record whose sort key
// moved between two page fetches must not render twice.
func MergeByID[T any](existing, more []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		seen[id(row)] = struct{}{}
	}
	out := existing
	for _, row := range more {
		if _, ok := seen[id(row)]; ok {
			continue
		}
		seen[id(row)] = struct{}{}
		out = append(out, row)
	}
	return out
}
