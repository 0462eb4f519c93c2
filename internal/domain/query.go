package domain

import "fmt"

// SortKey selects a catalog ordering.
type SortKey string

// Supported orderings.
const (
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortMostLiked SortKey = "most-liked"
)

// ParseSortKey accepts the canonical keys; empty means name-asc.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortNameAsc, nil
	case SortNameAsc, SortNameDesc, SortMostLiked:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// EntryQuery describes a filtered, sorted listing.
type EntryQuery struct {
	Search   string // Case-insensitive name substring
	Category string // Code, or CategoryAll / empty for every category
	Sort     SortKey
}
