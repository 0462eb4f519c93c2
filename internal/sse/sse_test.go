package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macontouch/notebook/internal/domain"
)

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_BroadcastToAllClients(t *testing.T) {
	m := startManager(t)

	a, err := m.Connect()
	require.NoError(t, err)
	b, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewEntryDeletedEvent("Sunset"))

	for _, c := range []*Client{a, b} {
		e := receive(t, c)
		assert.Equal(t, EventEntryDeleted, e.Type)
		assert.Equal(t, NameData{Name: "Sunset"}, e.Data)
	}
}

func TestManager_DisconnectIsIdempotent(t *testing.T) {
	m := startManager(t)
	c, err := m.Connect()
	require.NoError(t, err)

	m.Disconnect(c.ID)
	m.Disconnect(c.ID)
	assert.Equal(t, 0, m.ClientCount())

	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_IgnoresForeignEventTypes(t *testing.T) {
	m := startManager(t)
	c, err := m.Connect()
	require.NoError(t, err)

	m.Emit("not an event")
	m.Emit(NewCatalogReloadedEvent(3))

	e := receive(t, c)
	assert.Equal(t, EventCatalogReloaded, e.Type)
}

func TestManager_ShutdownClosesClientsAndDropsLateEvents(t *testing.T) {
	m := NewManager(nil)
	go m.Start(context.Background())

	c, err := m.Connect()
	require.NoError(t, err)

	// A delivered event proves the loop is running.
	m.Emit(NewHeartbeatEvent())
	receive(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	assert.NotPanics(t, func() { m.Emit(NewHeartbeatEvent()) })

	select {
	case <-c.Done:
	case <-time.After(time.Second):
		t.Fatal("client not closed on shutdown")
	}
}

func TestNewEntryUpdatedEvent_PreviousName(t *testing.T) {
	e := &domain.Entry{Name: "New", Category: "B", Image: "data:...", Liked: 2}

	renamed := NewEntryUpdatedEvent(e, "Old").Data.(EntryUpdatedData)
	assert.Equal(t, "Old", renamed.PreviousName)
	assert.Equal(t, 2, renamed.Liked)

	same := NewEntryUpdatedEvent(e, "New").Data.(EntryUpdatedData)
	assert.Empty(t, same.PreviousName)
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	srv := httptest.NewServer(NewHandler(m, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Wait for registration before emitting.
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.Emit(NewEntryCreatedEvent(&domain.Entry{Name: "Sunset", Image: "data:image/png;base64,AAAA"}))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: entry.created") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"name":"Sunset"`)
	assert.NotContains(t, data, "base64", "images stay out of events")
}

func TestHandler_RejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(NewManager(nil), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
