// Package sse pushes catalog changes to connected clients as Server-Sent Events.
package sse

import (
	"time"

	"github.com/macontouch/notebook/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

// Catalog events.
const (
	EventEntryCreated EventType = "entry.created"
	EventEntryUpdated EventType = "entry.updated"
	EventEntryDeleted EventType = "entry.deleted"
	EventEntryRated   EventType = "entry.rated"

	EventCategoryCreated EventType = "category.created"
	EventCategoryUpdated EventType = "category.updated"
	EventCategoryDeleted EventType = "category.deleted"

	// EventSyncCompleted follows a successful merge with the remote snapshot.
	EventSyncCompleted EventType = "sync.completed"
	// EventCatalogReloaded follows an edit of data.json by another process.
	EventCatalogReloaded EventType = "catalog.reloaded"

	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// EntrySummary is the event payload for entries. Images are omitted to keep
// messages small; clients refetch the entry when they need them.
type EntrySummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Liked       int    `json:"liked"`
	BlurHash    string `json:"blurhash,omitempty"`
}

// SummarizeEntry builds the event payload for e.
func SummarizeEntry(e *domain.Entry) EntrySummary {
	return EntrySummary{
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Liked:       e.Liked,
		BlurHash:    e.BlurHash,
	}
}

// EntryUpdatedData carries the previous name when an update renamed the entry.
type EntryUpdatedData struct {
	EntrySummary
	PreviousName string `json:"previous_name,omitempty"`
}

// NameData identifies a deleted entry or category.
type NameData struct {
	Name string `json:"name"`
}

// SyncCompletedData reports the outcome of a merge.
type SyncCompletedData struct {
	Added         int `json:"added"`
	Total         int `json:"total"`
	LocalVersion  int `json:"local_version"`
	RemoteVersion int `json:"remote_version"`
}

// CatalogReloadedData reports an external catalog change.
type CatalogReloadedData struct {
	Total int `json:"total"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewEntryCreatedEvent creates an entry.created event.
func NewEntryCreatedEvent(e *domain.Entry) Event {
	return newEvent(EventEntryCreated, SummarizeEntry(e))
}

// NewEntryUpdatedEvent creates an entry.updated event.
func NewEntryUpdatedEvent(e *domain.Entry, previousName string) Event {
	data := EntryUpdatedData{EntrySummary: SummarizeEntry(e)}
	if previousName != e.Name {
		data.PreviousName = previousName
	}
	return newEvent(EventEntryUpdated, data)
}

// NewEntryDeletedEvent creates an entry.deleted event.
func NewEntryDeletedEvent(name string) Event {
	return newEvent(EventEntryDeleted, NameData{Name: name})
}

// NewEntryRatedEvent creates an entry.rated event.
func NewEntryRatedEvent(e *domain.Entry) Event {
	return newEvent(EventEntryRated, SummarizeEntry(e))
}

// NewCategoryEvent creates a category.created or category.updated event.
func NewCategoryEvent(t EventType, c domain.Category) Event {
	return newEvent(t, c)
}

// NewCategoryDeletedEvent creates a category.deleted event.
func NewCategoryDeletedEvent(name string) Event {
	return newEvent(EventCategoryDeleted, NameData{Name: name})
}

// NewSyncCompletedEvent creates a sync.completed event.
func NewSyncCompletedEvent(d SyncCompletedData) Event {
	return newEvent(EventSyncCompleted, d)
}

// NewCatalogReloadedEvent creates a catalog.reloaded event.
func NewCatalogReloadedEvent(total int) Event {
	return newEvent(EventCatalogReloaded, CatalogReloadedData{Total: total})
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, struct{}{})
}
