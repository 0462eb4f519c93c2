package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_AddLikesClampsAtZero(t *testing.T) {
	e := Entry{Name: "a", Liked: 2}

	e.AddLikes(-5)
	assert.Equal(t, 0, e.Liked)

	e.AddLikes(3)
	e.AddLikes(-1)
	assert.Equal(t, 2, e.Liked)
}

func TestEntry_AddLikesSaturates(t *testing.T) {
	e := Entry{Name: "a", Liked: 5}

	e.AddLikes(math.MaxInt)
	assert.Equal(t, math.MaxInt, e.Liked)

	e.AddLikes(1)
	assert.Equal(t, math.MaxInt, e.Liked)

	e.AddLikes(math.MinInt)
	assert.Equal(t, 0, e.Liked)
}

func TestEntry_Check(t *testing.T) {
	assert.NoError(t, (&Entry{Name: "a"}).Check())
	assert.Error(t, (&Entry{}).Check())
	assert.Error(t, (&Entry{Name: "a", Liked: -1}).Check())
}

func TestSnapshot_CheckReportsIndex(t *testing.T) {
	s := Snapshot{Version: 1, Data: []Entry{{Name: "ok"}, {Name: ""}}}
	err := s.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data[1]")
}

func TestSnapshot_CheckRejectsNegativeVersion(t *testing.T) {
	assert.Error(t, (&Snapshot{Version: -1, Data: []Entry{}}).Check())
	assert.NoError(t, (&Snapshot{Version: 0, Data: []Entry{}}).Check())
}

func TestVersions_UpdateAvailable(t *testing.T) {
	assert.True(t, Versions{Local: 1, Remote: 2}.UpdateAvailable())
	assert.False(t, Versions{Local: 2, Remote: 2}.UpdateAvailable())
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortNameAsc, k)

	k, err = ParseSortKey("most-liked")
	require.NoError(t, err)
	assert.Equal(t, SortMostLiked, k)

	_, err = ParseSortKey("random")
	assert.Error(t, err)
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 4)
	for i := range cats {
		assert.NoError(t, cats[i].Check())
	}
	assert.Equal(t, 2, IndexOfCategory(cats, "English"))
	assert.Equal(t, -1, IndexOfCategory(cats, "French"))
}

func TestNewUserProfile(t *testing.T) {
	p := NewUserProfile("Asha", "9876543210", time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-03-09", p.SinkedOn)
	assert.Equal(t, 0, p.Sinked)
}

func TestIndexOfEntryAndNames(t *testing.T) {
	entries := []Entry{{Name: "a"}, {Name: "b"}}
	assert.Equal(t, 1, IndexOfEntry(entries, "b"))
	assert.Equal(t, -1, IndexOfEntry(entries, "c"))
	assert.Len(t, EntryNames(entries), 2)
}
