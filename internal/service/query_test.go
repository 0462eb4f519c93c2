package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/macontouch/notebook/internal/domain"
)

var englishTag = language.English

func names(entries []domain.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestSortEntries_ByName(t *testing.T) {
	entries := []domain.Entry{{Name: "banana"}, {Name: "Apple"}, {Name: "cherry"}}

	assert.Equal(t, []string{"Apple", "banana", "cherry"}, names(SortEntries(entries, domain.SortNameAsc, englishTag)))
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, names(SortEntries(entries, domain.SortNameDesc, englishTag)))
	assert.Equal(t, []string{"banana", "Apple", "cherry"}, names(entries), "input must not be reordered")
}

func TestSortEntries_MostLikedIsStable(t *testing.T) {
	entries := []domain.Entry{
		{Name: "a", Liked: 1},
		{Name: "b", Liked: 5},
		{Name: "c", Liked: 1},
		{Name: "d", Liked: 5},
		{Name: "e", Liked: 0},
	}

	got := SortEntries(entries, domain.SortMostLiked, englishTag)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, names(got))
}

func TestSortEntries_EqualNamesKeepOrder(t *testing.T) {
	entries := []domain.Entry{
		{Name: "same", Description: "first"},
		{Name: "same", Description: "second"},
	}

	for _, key := range []domain.SortKey{domain.SortNameAsc, domain.SortNameDesc} {
		got := SortEntries(entries, key, englishTag)
		assert.Equal(t, "first", got[0].Description, key)
		assert.Equal(t, "second", got[1].Description, key)
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []domain.Entry{
		{Name: "Sunset Boulevard", Category: "E"},
		{Name: "Sunrise", Category: "B"},
		{Name: "Moonlight", Category: "E"},
	}

	tests := []struct {
		name     string
		search   string
		category string
		want     []string
	}{
		{"everything", "", domain.CategoryAll, []string{"Sunset Boulevard", "Sunrise", "Moonlight"}},
		{"empty category matches all", "", "", []string{"Sunset Boulevard", "Sunrise", "Moonlight"}},
		{"case-insensitive substring", "SUN", domain.CategoryAll, []string{"Sunset Boulevard", "Sunrise"}},
		{"category only", "", "E", []string{"Sunset Boulevard", "Moonlight"}},
		{"both", "sun", "B", []string{"Sunrise"}},
		{"no match", "zzz", "E", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterEntries(entries, tt.search, tt.category)))
		})
	}
}
