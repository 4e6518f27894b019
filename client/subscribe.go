package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/emotiv/cortexgo/internal/stream"
	"github.com/emotiv/cortexgo/pkg/protocol"
)

// Subscription delivers parsed, typed samples for one (stream, session)
// pair. It wraps the transport's raw stream.Subscription, translating
// each inbound RawEvent into the sample type matching the stream.
type Subscription struct {
	tr          *CortexClient
	streamName  string
	session     string
	numChannels int

	raw *stream.Subscription
	out chan any

	closeOnce sync.Once
	done      chan struct{}
}

func newSubscription(c *CortexClient, streamName, session string, numChannels, capacity int, raw *stream.Subscription) *Subscription {
	s := &Subscription{
		tr:          c,
		streamName:  streamName,
		session:     session,
		numChannels: numChannels,
		raw:         raw,
		out:         make(chan any, capacity),
		done:        make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		select {
		case v, ok := <-s.raw.Recv():
			if !ok {
				return
			}
			sample := parseSample(s.streamName, v, s.numChannels)
			if sample == nil {
				continue
			}
			select {
			case s.out <- sample:
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}

// Recv returns the channel of parsed samples. It closes once the
// subscription is closed or the underlying connection tears down.
func (s *Subscription) Recv() <-chan any { return s.out }

// StreamName reports the Cortex stream name this subscription carries.
func (s *Subscription) StreamName() string { return s.streamName }

// Session reports the session id this subscription was opened against.
func (s *Subscription) Session() string { return s.session }

// Close stops delivery and releases the underlying transport queue. It is
// safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.tr.tr.Unsubscribe(s.streamName, s.session)
	})
}

func parseSample(streamName string, v any, numChannels int) any {
	raw, ok := v.(*protocol.RawEvent)
	if !ok {
		return nil
	}
	switch streamName {
	case protocol.StreamEEG:
		sample, ok := protocol.ParseEEGSample(raw.EEG, numChannels, raw.Time)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamDev:
		sample, ok := protocol.ParseDeviceQualitySample(raw.Dev, numChannels)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamMot:
		sample, ok := protocol.ParseMotionSample(raw.Mot, raw.Time)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamEq:
		sample, ok := protocol.ParseEEGQualitySample(raw.Eq, numChannels)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamPow:
		sample, ok := protocol.ParseBandPowerSample(raw.Pow, numChannels, raw.Time)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamMet:
		sample, ok := protocol.ParsePerformanceMetricsSample(raw.Met, raw.Time)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamCom:
		sample, ok := protocol.ParseMentalCommandSample(raw.Com)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamFac:
		sample, ok := protocol.ParseFacialExpressionSample(raw.Fac)
		if !ok {
			return nil
		}
		return sample
	case protocol.StreamSys:
		sample, ok := protocol.ParseSystemEventSample(raw.Sys)
		if !ok {
			return nil
		}
		return sample
	default:
		return nil
	}
}

// channelCount recovers the electrode/channel count for a stream from the
// "cols" array subscribe returns, so the parser knows how many channel
// slots to expect in each sample array.
func channelCount(streamName string, cols []any) int {
	n := len(cols)
	switch streamName {
	case protocol.StreamEEG:
		if n < 5 {
			return 0
		}
		return n - 5
	case protocol.StreamDev:
		if n < 4 {
			return 0
		}
		return n - 4
	case protocol.StreamEq:
		if n < 3 {
			return 0
		}
		return n - 3
	case protocol.StreamPow:
		return n / 5
	default:
		return 0
	}
}

// Subscribe requests delivery of one or more data streams for a session
// and returns one parsed Subscription per stream Cortex accepted, plus the
// per-stream failures Cortex reported. Callers must Close every returned
// Subscription when done with it.
func (c *CortexClient) Subscribe(ctx context.Context, p protocol.SubscribeParams, queueCapacity int) ([]*Subscription, []protocol.StreamFailure, error) {
	result, err := call[protocol.SubscribeResult](ctx, c, protocol.MethodSubscribe, p)
	if err != nil {
		return nil, nil, err
	}
	subs := make([]*Subscription, 0, len(result.Success))
	for _, succ := range result.Success {
		var cols []any
		_ = json.Unmarshal(succ.Cols, &cols)
		numChannels := channelCount(succ.StreamName, cols)
		raw := c.tr.Subscribe(succ.StreamName, p.Session, queueCapacity)
		subs = append(subs, newSubscription(c, succ.StreamName, p.Session, numChannels, queueCapacity, raw))
	}
	return subs, result.Failure, nil
}

// Unsubscribe stops delivery of the named streams for a session on the
// Cortex side. Callers should also Close any corresponding local
// Subscription to release its local queue.
func (c *CortexClient) Unsubscribe(ctx context.Context, p protocol.SubscribeParams) (protocol.SubscribeResult, error) {
	return call[protocol.SubscribeResult](ctx, c, protocol.MethodUnsubscribe, p)
}
