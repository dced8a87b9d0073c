package hostapi_test

import (
	"testing"
	"time"

	"github.com/advanceemu/gba/internal/hostapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_StateEventReachesMatchingSubscriber(t *testing.T) {
	b := hostapi.NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("s1", []hostapi.EventType{hostapi.EventTypeState})
	defer b.Unsubscribe(sub)

	b.BroadcastState("s1", map[string]interface{}{"pc": float64(0x08000000)})

	select {
	case ev := <-sub.Channel:
		assert.Equal(t, hostapi.EventTypeState, ev.Type)
		assert.Equal(t, "s1", ev.SessionID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestBroadcaster_FiltersBySessionID(t *testing.T) {
	b := hostapi.NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("only-this-one", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastState("different-session", map[string]interface{}{})

	select {
	case <-sub.Channel:
		t.Fatal("subscriber should not receive events for a different session")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_FiltersByEventType(t *testing.T) {
	b := hostapi.NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("", []hostapi.EventType{hostapi.EventTypeExecution})
	defer b.Unsubscribe(sub)

	b.BroadcastState("s1", map[string]interface{}{})

	select {
	case <-sub.Channel:
		t.Fatal("subscriber filtered to execution events should not see a state event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_BroadcastExecutionMergesDetails(t *testing.T) {
	b := hostapi.NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastExecution("s1", "breakpoint", map[string]interface{}{"address": uint32(0x100)})

	select {
	case ev := <-sub.Channel:
		require.Equal(t, hostapi.EventTypeExecution, ev.Type)
		assert.Equal(t, "breakpoint", ev.Data["event"])
		assert.Equal(t, uint32(0x100), ev.Data["address"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := hostapi.NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("", nil)
	b.Unsubscribe(sub)

	_, ok := <-sub.Channel
	assert.False(t, ok, "unsubscribing closes the subscription's channel")
}
