package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"meme-market-sim/internal/domain"
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "dial hub")

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHub_BroadcastsBigTrade(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	// Wait for registration before publishing.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.BigTrade(domain.BigTradeEvent{
		Direction:   "BUY",
		TokenSymbol: "MOON",
		TokenAmount: 1234,
		CashValue:   9999,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "read broadcast")

	var env struct {
		Kind    string               `json:"kind"`
		Payload domain.BigTradeEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, domain.EventBigTrade, env.Kind)
	require.Equal(t, "MOON", env.Payload.TokenSymbol)
	require.Equal(t, 9999.0, env.Payload.CashValue)
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil)

	_, cleanup := dialHub(t, hub)
	defer cleanup()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.Close()
	hub.Close() // second close must not panic

	require.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishWithNoClients(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	// Must not block or panic with nobody listening.
	hub.RugPull(domain.RugPullEvent{TokenSymbol: "DEAD", CrashPercent: 100})
	hub.PriceAlert(domain.PriceAlertEvent{TokenSymbol: "MOON", NewPrice: 1})
	hub.WhaleAlert(domain.WhaleAlertEvent{TokenSymbol: "MOON", CashValue: 50000})
}
