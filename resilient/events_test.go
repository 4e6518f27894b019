package resilient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDeliversToAllSubscribers(t *testing.T) {
	b := newEventBus()
	ch1, cancel1 := b.subscribe(4)
	defer cancel1()
	ch2, cancel2 := b.subscribe(4)
	defer cancel2()

	b.publish(ConnectionEvent{State: StateConnecting})

	select {
	case evt := <-ch1:
		assert.Equal(t, StateConnecting, evt.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting on subscriber 1")
	}
	select {
	case evt := <-ch2:
		assert.Equal(t, StateConnecting, evt.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting on subscriber 2")
	}
}

func TestEventBusCancelStopsDelivery(t *testing.T) {
	b := newEventBus()
	ch, cancel := b.subscribe(4)
	cancel()

	b.publish(ConnectionEvent{State: StateConnecting})

	_, open := <-ch
	require.False(t, open)
}

func TestEventBusSlowSubscriberNeverBlocksPublish(t *testing.T) {
	b := newEventBus()
	_, cancel := b.subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.publish(ConnectionEvent{State: StateConnecting, Attempt: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestEventBusCloseAllClosesEveryChannel(t *testing.T) {
	b := newEventBus()
	ch1, _ := b.subscribe(1)
	ch2, _ := b.subscribe(1)
	b.closeAll()

	_, open1 := <-ch1
	_, open2 := <-ch2
	require.False(t, open1)
	require.False(t, open2)
}
