package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gigbook/internal/domain/notification"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", c.Query("uid"))
		c.Next()
	}, hub.Handler())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, hub *Hub, uid string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connected(uid) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishNotificationReachesEverySocketOfUser(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := newTestServer(t, hub)

	a := dial(t, srv, "u1")
	b := dial(t, srv, "u1")
	other := dial(t, srv, "u2")
	waitConnected(t, hub, "u1", 2)
	waitConnected(t, hub, "u2", 1)

	hub.PublishNotification("u1", &notification.InAppNotification{
		ID:               7,
		UserID:           "u1",
		Title:            "Booking confirmed",
		NotificationType: notification.TypeBookingConfirmed,
		Icon:             "✅",
	})

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, EventNotification, ev.Type)
		assert.Equal(t, "Booking confirmed", ev.Payload["title"])
	}

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other users must not receive the event")
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "u1")
	waitConnected(t, hub, "u1", 1)

	conn.Close()
	waitConnected(t, hub, "u1", 0)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.gigbook.io"})

	req := func(origin string) *http.Request {
		r := httptest.NewRequest("GET", "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, check(req("https://app.gigbook.io")))
	assert.True(t, check(req("")))
	assert.False(t, check(req("https://evil.example")))
}
