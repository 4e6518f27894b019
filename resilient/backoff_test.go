package resilient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emotiv/cortexgo/config"
)

func TestBackoffGrowsTowardMaxAndResets(t *testing.T) {
	b := newBackoff(config.ReconnectPolicy{
		Base: 10 * time.Millisecond, Max: 100 * time.Millisecond, Factor: 2, Jitter: 0,
	})

	first := b.next()
	assert.Equal(t, 10*time.Millisecond, first)
	second := b.next()
	assert.Equal(t, 20*time.Millisecond, second)
	third := b.next()
	assert.Equal(t, 40*time.Millisecond, third)

	for i := 0; i < 10; i++ {
		b.next()
	}
	assert.LessOrEqual(t, b.cur, 100*time.Millisecond)

	b.reset()
	assert.Equal(t, 10*time.Millisecond, b.cur)
}

func TestBackoffJitterStaysInBounds(t *testing.T) {
	b := newBackoff(config.ReconnectPolicy{
		Base: 100 * time.Millisecond, Max: time.Second, Factor: 2, Jitter: 0.2,
	})
	for i := 0; i < 50; i++ {
		d := b.next()
		assert.GreaterOrEqual(t, d, 60*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestBackoffDefaultsAppliedForInvalidPolicy(t *testing.T) {
	b := newBackoff(config.ReconnectPolicy{})
	assert.Equal(t, config.DefaultReconnectBase, b.base)
	assert.Equal(t, config.DefaultReconnectMax, b.max)
	assert.Equal(t, config.DefaultReconnectFactor, b.factor)
	// a zero jitter is a valid "no jitter" setting, not an invalid one, so
	// it is kept rather than replaced by the default.
	assert.Equal(t, 0.0, b.jitter)
}
