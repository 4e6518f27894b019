package resilient

import (
	"sync"

	"github.com/emotiv/cortexgo/client"
)

// Subscription is a consumer-visible, reconnect-stable handle for one
// (stream, session) pair: its Recv() channel never changes identity even
// though the underlying client.Subscription is swapped out on every
// reconnect, grounded on the teacher's subscription re-registration
// pattern.
type Subscription struct {
	streamName string
	session    string
	capacity   int

	out    chan any
	stopCh chan struct{}

	mu  sync.Mutex
	cur *client.Subscription

	closeOnce sync.Once
}

func newSubscription(streamName, session string, capacity int) *Subscription {
	return &Subscription{
		streamName: streamName,
		session:    session,
		capacity:   capacity,
		out:        make(chan any, capacity),
		stopCh:     make(chan struct{}),
	}
}

// attach points the bridge at a newly issued underlying subscription and
// starts forwarding its records into the bridge's stable output channel.
func (s *Subscription) attach(sub *client.Subscription) {
	s.mu.Lock()
	s.cur = sub
	s.mu.Unlock()
	go s.forward(sub)
}

func (s *Subscription) forward(sub *client.Subscription) {
	for v := range sub.Recv() {
		select {
		case s.out <- v:
		case <-s.stopCh:
			return
		}
	}
}

// Recv returns the channel of parsed samples. It is the same channel across
// reconnects. Closing the subscription stops forwarding into it but does not
// close the channel.
func (s *Subscription) Recv() <-chan any { return s.out }

// StreamName reports the Cortex stream name this subscription carries.
func (s *Subscription) StreamName() string { return s.streamName }

// Session reports the session id this subscription was opened against.
func (s *Subscription) Session() string { return s.session }

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		cur := s.cur
		s.mu.Unlock()
		if cur != nil {
			cur.Close()
		}
	})
}
