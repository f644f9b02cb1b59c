package pagination

import "strings"

// PageInfo describes the paging reported by a content fetch.
type PageInfo struct {
	Current int
	Last    int
	Total   int
}

// OnePage is the degenerate paging of a direct-identifier lookup.
func OnePage() PageInfo {
	return PageInfo{Current: 1, Last: 1, Total: 1}
}

// Normalize clamps reported paging into a committable range.
// A fetch that reports no pages still commits as a single empty page.
func (p PageInfo) Normalize() PageInfo {
	if p.Last < 1 {
		p.Last = 1
	}
	if p.Current < 1 {
		p.Current = 1
	}
	if p.Current > p.Last {
		p.Current = p.Last
	}
	return p
}

// Clamp bounds value into [least, most] with no wraparound.
func Clamp(value, least, most int) int {
	if value < least {
		return least
	}
	if value > most {
		return most
	}
	return value
}

// ComputeTarget applies a signed step to the current page and clamps the
// result into [1, lastPage]. The second return is true when the navigation
// is a no-op (target equals current): the caller must not re-fetch or
// re-render in that case.
func ComputeTarget(currentPage, lastPage, step int) (int, bool) {
	target := Clamp(currentPage+step, 1, lastPage)
	return target, target == currentPage
}

// IsDirectID reports whether the identifier is a direct numeric reference.
// Direct lookups return exactly one item and suppress navigation controls.
func IsDirectID(identifier string) bool {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return false
	}
	for _, r := range identifier {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
