package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SlowClientKeepsLatestState(t *testing.T) {
	m := NewManager(nil, time.Hour)
	client, err := m.Connect()
	require.NoError(t, err)

	last := clientBuffer + 9
	for i := 0; i <= last; i++ {
		m.broadcast(NewStateChangedEvent(i))
	}
	require.Len(t, client.EventChan, clientBuffer)

	// Heartbeats never displace queued state.
	m.broadcast(NewHeartbeatEvent())
	require.Len(t, client.EventChan, clientBuffer)

	var newest Event
	for range clientBuffer {
		newest = <-client.EventChan
	}
	assert.Equal(t, last, newest.Data)

	m.Disconnect(client.ID)
	m.Disconnect(client.ID)
	assert.Zero(t, m.ClientCount())
}

func TestManager_ShutdownDrainsAndClosesClients(t *testing.T) {
	m := NewManager(nil, time.Hour)
	client, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewStateChangedEvent("a"))
	require.NoError(t, m.Shutdown(context.Background()))

	event, ok := <-client.EventChan
	require.True(t, ok)
	assert.Equal(t, EventStateChanged, event.Type)

	_, ok = <-client.EventChan
	assert.False(t, ok)

	// Emitting after shutdown is a silent no-op.
	m.Emit(NewStateChangedEvent("b"))
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestHandler_StreamsConnectedThenState(t *testing.T) {
	m := NewManager(nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	h := NewHandler(m, func() any { return map[string]int{"version": 1} }, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, Event) {
		t.Helper()
		var name string
		var event Event
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
			case line == "":
				return name, event
			}
		}
	}

	name, _ := readEvent()
	assert.Equal(t, string(EventConnected), name)

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	m.Emit(NewStateChangedEvent(map[string]int{"version": 2}))

	name, event := readEvent()
	assert.Equal(t, string(EventStateChanged), name)
	assert.Equal(t, map[string]any{"version": float64(2)}, event.Data)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(nil, time.Hour), nil, nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
