package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallRateLimiter(t *testing.T) {
	rl := NewCallRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("alice"), "attempt %d should pass", i)
	}
	assert.False(t, rl.Allow("alice"))

	// Limits are per identity.
	assert.True(t, rl.Allow("bob"))
}

func TestCallRateLimiterWindowSlides(t *testing.T) {
	rl := NewCallRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("alice"))
}
