package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawchain/lawchain-api/api/handlers"
)

func TestHub_BroadcastReachesConnectedClient(t *testing.T) {
	hub := handlers.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeCaseEvents))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the hub registers the client asynchronously from the dial
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(handlers.CaseEvent{
		Type:   handlers.EventCaseSubmitted,
		CaseID: 7,
		Action: "Case Registered",
		By:     "0xclient",
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev handlers.CaseEvent
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, handlers.EventCaseSubmitted, ev.Type)
	assert.Equal(t, int64(7), ev.CaseID)
	assert.NotEmpty(t, ev.At)
}

func TestHub_DisconnectDropsClient(t *testing.T) {
	hub := handlers.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeCaseEvents))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
