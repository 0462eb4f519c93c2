package service

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/macontouch/notebook/internal/domain"
)

// SortEntries returns a sorted copy of entries. Name orders use collation
// rules for loc; most-liked orders by liked descending. Ties keep their
// input order.
func SortEntries(entries []domain.Entry, key domain.SortKey, loc language.Tag) []domain.Entry {
	out := slices.Clone(entries)
	if out == nil {
		out = []domain.Entry{}
	}

	switch key {
	case domain.SortMostLiked:
		slices.SortStableFunc(out, func(a, b domain.Entry) int {
			return b.Liked - a.Liked
		})
	case domain.SortNameDesc:
		col := collate.New(loc)
		slices.SortStableFunc(out, func(a, b domain.Entry) int {
			return col.CompareString(b.Name, a.Name)
		})
	default:
		col := collate.New(loc)
		slices.SortStableFunc(out, func(a, b domain.Entry) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
	return out
}

// FilterEntries keeps entries whose name contains search, compared under
// Unicode case folding, and whose category equals category. An empty category
// or domain.CategoryAll matches every entry. Input order is preserved.
func FilterEntries(entries []domain.Entry, search, category string) []domain.Entry {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))
	allCategories := category == "" || category == domain.CategoryAll

	out := make([]domain.Entry, 0, len(entries))
	for i := range entries {
		if !allCategories && entries[i].Category != category {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(entries[i].Name), needle) {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}
