package realtime_test

import (
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	logsvc "github.com/trezcool/yuva/services/logger"
	"github.com/trezcool/yuva/services/realtime"
)

func setup(t *testing.T) (*realtime.Hub, func(user string, topics ...string) *websocket.Conn) {
	hub := realtime.NewHub(logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topics := strings.Split(r.URL.Query().Get("topics"), ",")
		_ = hub.Serve(w, r, r.URL.Query().Get("user"), topics)
	}))
	t.Cleanup(srv.Close)

	dial := func(user string, topics ...string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + user + "&topics=" + strings.Join(topics, ",")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	return hub, dial
}

func waitForClients(t *testing.T, hub *realtime.Hub, n int) {
	require.Eventually(t, func() bool { return hub.Count() == n }, time.Second, 5*time.Millisecond)
}

func receive(conn *websocket.Conn) (core.Event, error) {
	var evt core.Event
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	err := conn.ReadJSON(&evt)
	return evt, err
}

func TestHub_Publish(t *testing.T) {
	hub, dial := setup(t)
	alice := dial("alice", core.TopicMessages, core.TopicAnnouncements)
	bob := dial("bob", core.TopicMessages)
	carol := dial("carol", core.TopicMessages, core.TopicAnnouncements)
	waitForClients(t, hub, 3)

	t.Run("message events only reach their participants", func(t *testing.T) {
		hub.Publish(core.Event{Topic: core.TopicMessages, Action: core.ActionInsert, ID: "m1", UserIDs: []string{"alice", "bob"}})

		for _, conn := range []*websocket.Conn{alice, bob} {
			evt, err := receive(conn)
			require.NoError(t, err)
			assert.Equal(t, core.Event{Topic: core.TopicMessages, Action: core.ActionInsert, ID: "m1"}, evt)
		}
		_, err := receive(carol)
		assert.Error(t, err)
	})

	t.Run("topic events reach every subscriber", func(t *testing.T) {
		hub.Publish(core.Event{Topic: core.TopicAnnouncements, Action: core.ActionDelete, ID: "a1"})
		evt, err := receive(alice)
		require.NoError(t, err)
		assert.Equal(t, "a1", evt.ID)
		assert.Equal(t, core.ActionDelete, evt.Action)

		_, err = receive(bob) // not subscribed
		assert.Error(t, err)
	})
}

func TestHub_Disconnect(t *testing.T) {
	hub, dial := setup(t)
	conn := dial("alice", core.TopicRequests)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)

	// publishing without clients is a no-op
	hub.Publish(core.Event{Topic: core.TopicRequests, Action: core.ActionUpdate, ID: "r1"})
}
