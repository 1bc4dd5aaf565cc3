package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowEnforcesBurstPerKey(t *testing.T) {
	l := NewMapLimiter(1, 2, time.Minute)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// A different key carries its own budget.
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestAllowRefillsOverTime(t *testing.T) {
	l := NewMapLimiter(100, 1, time.Minute)

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, l.Allow("k"))
}
