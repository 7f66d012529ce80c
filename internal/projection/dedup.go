package projection

// Keyed is implemented by ledger events that carry a natural identity.
type Keyed interface {
	Key() string
}

// Deduplicate returns the longest subsequence of events, in original
// order, in which no key repeats. Overlapping or retried fetch windows
// replay the same events; collapsing them here once keeps every
// downstream fold idempotent without per-consumer checks.
func Deduplicate[E Keyed](events []E) []E {
	seen := make(map[string]struct{}, len(events))
	out := make([]E, 0, len(events))

	for _, event := range events {
		key := event.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, event)
	}

	return out
}
