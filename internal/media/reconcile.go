package media

import "sort"

// Stale returns the names present in previous but not in current, sorted.
// Callers use it to find files left behind when a record's images change.
func Stale(previous, current []string) []string {
	gone := difference(dedupe(previous), dedupe(current))
	out := make([]string, 0, len(gone))
	for name := range gone {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func dedupe(names []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range names {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

func difference(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for name := range a {
		if _, ok := b[name]; !ok {
			out[name] = struct{}{}
		}
	}
	return out
}
