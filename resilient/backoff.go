package resilient

import (
	"math/rand"
	"time"

	"github.com/emotiv/cortexgo/config"
)

// backoff generates exponentially increasing, jittered wait times for
// reconnect attempts: base, doubling by factor up to max, jittered into
// [1-jitter, 1+jitter] so many clients reconnecting at once don't do so in
// lockstep. Not safe for concurrent use; the resilient client owns one
// instance per connection lifecycle.
type backoff struct {
	base   time.Duration
	max    time.Duration
	factor float64
	jitter float64
	cur    time.Duration
}

func newBackoff(p config.ReconnectPolicy) *backoff {
	base, max, factor, jitter := p.Base, p.Max, p.Factor, p.Jitter
	if base <= 0 {
		base = config.DefaultReconnectBase
	}
	if max <= 0 || max < base {
		max = config.DefaultReconnectMax
	}
	if factor < 1.0 {
		factor = config.DefaultReconnectFactor
	}
	if jitter < 0 || jitter > 1 {
		jitter = config.DefaultReconnectJitter
	}
	return &backoff{base: base, max: max, factor: factor, jitter: jitter, cur: base}
}

func (b *backoff) next() time.Duration {
	d := b.cur
	if b.jitter > 0 {
		f := 1 + (rand.Float64()*2-1)*b.jitter
		d = time.Duration(float64(d) * f)
	}
	next := time.Duration(float64(b.cur) * b.factor)
	if next > b.max {
		next = b.max
	}
	b.cur = next
	return d
}

func (b *backoff) reset() { b.cur = b.base }
