package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"flex-designer-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, rdb *redis.Client) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(rdb, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func newClient(hub *Hub, buffer int) *Client {
	return &Client{Hub: hub, ID: uuid.New(), Send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected frame %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_BroadcastLocal(t *testing.T) {
	hub, _ := startHub(t, nil)

	a, b := newClient(hub, 4), newClient(hub, 4)
	require.True(t, hub.join(a))
	require.True(t, hub.join(b))
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("DOCUMENT_CHANGED", map[string]interface{}{"revision": 3})

	for _, c := range []*Client{a, b} {
		frame := receive(t, c)
		assert.Equal(t, "DOCUMENT_CHANGED", frame["type"])
		assert.Equal(t, float64(3), frame["data"].(map[string]interface{})["revision"])
	}
}

func TestHub_UnregisterClosesOnce(t *testing.T) {
	hub, _ := startHub(t, nil)

	c := newClient(hub, 1)
	require.True(t, hub.join(c))
	hub.leave(c)
	hub.leave(c)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub, _ := startHub(t, nil)

	slow := newClient(hub, 1)
	require.True(t, hub.join(slow))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("DOCUMENT_CHANGED", 1)
	hub.Broadcast("DOCUMENT_CHANGED", 2)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StoppedHubRefusesClients(t *testing.T) {
	hub, cancel := startHub(t, nil)

	c := newClient(hub, 1)
	require.True(t, hub.join(c))
	cancel()

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, hub.join(newClient(hub, 1)))
	hub.leave(c)
}

func TestHub_RelaysAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	newRedis := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}

	hubA, _ := startHub(t, newRedis())
	hubB, _ := startHub(t, newRedis())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(ClusterChannel)[ClusterChannel] == 2
	}, time.Second, 5*time.Millisecond)

	onA, onB := newClient(hubA, 4), newClient(hubB, 4)
	require.True(t, hubA.join(onA))
	require.True(t, hubB.join(onB))
	require.Eventually(t, func() bool {
		return hubA.ClientCount() == 1 && hubB.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hubA.Broadcast("DESIGN_SAVED", map[string]interface{}{"name": "Promo"})

	assert.Equal(t, "DESIGN_SAVED", receive(t, onB)["type"])
	assert.Equal(t, "DESIGN_SAVED", receive(t, onA)["type"])
	assertSilent(t, onA)
}
