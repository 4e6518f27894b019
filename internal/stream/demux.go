// Package stream implements the stream demultiplexer: bounded, per-stream
// delivery queues with backpressure accounting and late-subscriber
// semantics.
package stream

import (
	"sync"
	"sync/atomic"
)

// Subscription is one active (stream, session) binding: a bounded delivery
// queue plus the three monotonic counters required by the demultiplexer's
// accounting invariant (delivered + dropped_full + dropped_closed equals
// the number of events observed for this stream).
type Subscription struct {
	StreamName string
	Session    string

	mu     sync.Mutex
	ch     chan any
	closed bool

	delivered     atomic.Uint64
	droppedFull   atomic.Uint64
	droppedClosed atomic.Uint64
}

func newSubscription(streamName, session string, capacity int) *Subscription {
	return &Subscription{
		StreamName: streamName,
		Session:    session,
		ch:         make(chan any, capacity),
	}
}

// Recv returns the channel consumers read stream records from. The same
// channel is returned for the lifetime of the Subscription; Close closes it.
func (s *Subscription) Recv() <-chan any {
	return s.ch
}

// deliver applies the newest-drop-is-lost backpressure policy: if the
// receiver has been closed, the record is counted as dropped_closed; else
// a non-blocking send is attempted, counting dropped_full on a full queue.
// The send and the counter update happen under the same critical section
// so the three counters always sum to the number of records seen.
func (s *Subscription) deliver(record any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.droppedClosed.Add(1)
		return
	}
	select {
	case s.ch <- record:
		s.delivered.Add(1)
	default:
		s.droppedFull.Add(1)
	}
}

// Close marks the subscription closed: every subsequent deliver increments
// dropped_closed rather than blocking or panicking on a closed channel.
// Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Counters returns the current delivered/dropped_full/dropped_closed
// values. Safe to call concurrently with delivery.
func (s *Subscription) Counters() (delivered, droppedFull, droppedClosed uint64) {
	return s.delivered.Load(), s.droppedFull.Load(), s.droppedClosed.Load()
}

type subKey struct {
	stream  string
	session string
}

// Demux routes inbound stream records to the bounded per-(stream,session)
// queue that Subscribe created for them. A record for a (stream, session)
// pair with no active subscription is silently discarded — the consumer
// never subscribed, or already unsubscribed.
type Demux struct {
	mu   sync.RWMutex
	subs map[subKey]*Subscription
}

// NewDemux builds an empty demultiplexer.
func NewDemux() *Demux {
	return &Demux{subs: make(map[subKey]*Subscription)}
}

// Subscribe creates (or replaces) the bounded queue for (stream, session)
// with the given capacity and returns it. Late subscribers start with an
// empty queue; there is no replay of records seen before Subscribe was
// called.
func (d *Demux) Subscribe(streamName, session string, capacity int) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	sub := newSubscription(streamName, session, capacity)
	d.subs[subKey{streamName, session}] = sub
	return sub
}

// Unsubscribe removes and closes the (stream, session) subscription, if
// any. Further Route calls for this pair are silently discarded rather
// than routed anywhere.
func (d *Demux) Unsubscribe(streamName, session string) {
	d.mu.Lock()
	sub, ok := d.subs[subKey{streamName, session}]
	delete(d.subs, subKey{streamName, session})
	d.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// Route delivers record to the (stream, session) subscription if one is
// active.
func (d *Demux) Route(streamName, session string, record any) {
	d.mu.RLock()
	sub, ok := d.subs[subKey{streamName, session}]
	d.mu.RUnlock()
	if !ok {
		return
	}
	sub.deliver(record)
}

// CloseAll closes every active subscription, used on transport shutdown.
func (d *Demux) CloseAll() {
	d.mu.Lock()
	subs := make([]*Subscription, 0, len(d.subs))
	for _, sub := range d.subs {
		subs = append(subs, sub)
	}
	d.subs = make(map[subKey]*Subscription)
	d.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
}
