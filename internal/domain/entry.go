package domain

import (
	"errors"
	"fmt"
	"math"
)

// Entry is one catalog item. Name is the unique key.
// The thumbnail travels as "t_image" in every stored and remote document.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"` // Category code (Category.Code)
	Image       string `json:"image"`    // Data URI
	Thumbnail   string `json:"t_image"`  // 50x50 data URI
	Liked       int    `json:"liked"`    // Never negative
	BlurHash    string `json:"blurhash,omitempty"`
}

// Check reports structural problems in an entry read from storage or a remote snapshot.
func (e *Entry) Check() error {
	if e.Name == "" {
		return errors.New("entry without name")
	}
	if e.Liked < 0 {
		return fmt.Errorf("entry %q has negative liked count %d", e.Name, e.Liked)
	}
	return nil
}

// AddLikes applies delta to the liked counter, clamping at zero and
// saturating at math.MaxInt.
func (e *Entry) AddLikes(delta int) {
	if delta > 0 && e.Liked > math.MaxInt-delta {
		e.Liked = math.MaxInt
		return
	}
	e.Liked = max(e.Liked+delta, 0)
}

// EntryNames returns the set of names in entries.
func EntryNames(entries []Entry) map[string]struct{} {
	names := make(map[string]struct{}, len(entries))
	for i := range entries {
		names[entries[i].Name] = struct{}{}
	}
	return names
}

// IndexOfEntry returns the position of the entry called name, or -1.
func IndexOfEntry(entries []Entry, name string) int {
	for i := range entries {
		if entries[i].Name == name {
			return i
		}
	}
	return -1
}
