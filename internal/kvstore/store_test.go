package kvstore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "v1", time.Minute)
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	s.Set("k", "v2", time.Minute)
	v, _ = s.Get("k")
	assert.Equal(t, "v2", v, "last writer wins")

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestGetNeverReturnsExpired(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "v", 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestSetIfAbsentBlocksLiveEntry(t *testing.T) {
	s := New()
	defer s.Close()

	require.True(t, s.SetIfAbsent("k", "a", time.Minute))
	assert.False(t, s.SetIfAbsent("k", "b", time.Minute))

	v, _ := s.Get("k")
	assert.Equal(t, "a", v)
}

func TestSetIfAbsentAfterExpiry(t *testing.T) {
	s := New()
	defer s.Close()

	require.True(t, s.SetIfAbsent("k", "a", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)
	assert.True(t, s.SetIfAbsent("k", "b", time.Minute))
}

func TestSetIfAbsentConcurrent(t *testing.T) {
	s := New()
	defer s.Close()

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- s.SetIfAbsent("k", "v", time.Minute)
		}()
	}
	wg.Wait()
	close(wins)

	succeeded := 0
	for ok := range wins {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent writer may win")
}

func TestCompareAndDelete(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set("k", "secret", time.Minute)

	assert.False(t, s.CompareAndDelete("k", "wrong"))
	_, ok := s.Get("k")
	assert.True(t, ok, "mismatch must not consume the entry")

	assert.True(t, s.CompareAndDelete("k", "secret"))
	assert.False(t, s.CompareAndDelete("k", "secret"), "entry is single use")
}
