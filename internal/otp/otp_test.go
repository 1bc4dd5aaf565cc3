package otp

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Debasish241/RealTime-Chatapp/internal/kvstore"
	"github.com/Debasish241/RealTime-Chatapp/internal/queue"
)

type fakePublisher struct {
	mu   sync.Mutex
	jobs []queue.MailJob
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	var job queue.MailJob
	if err := json.Unmarshal(data, &job); err != nil {
		return err
	}
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	return nil
}

func newTestService(t *testing.T) (*Service, *kvstore.Store, *fakePublisher) {
	t.Helper()
	store := kvstore.New()
	t.Cleanup(store.Close)
	pub := &fakePublisher{}
	return NewService(store, pub, zap.NewNop()), store, pub
}

func TestRequestCodeIssuesAndEnqueues(t *testing.T) {
	svc, store, pub := newTestService(t)

	require.NoError(t, svc.RequestCode("a@x.com"))

	require.Len(t, pub.jobs, 1)
	assert.Equal(t, "a@x.com", pub.jobs[0].To)

	code, ok := store.Get("otp:a@x.com")
	require.True(t, ok)
	assert.Len(t, code, 6)
	assert.Contains(t, pub.jobs[0].Body, code)
}

func TestRequestCodeRateLimited(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.RequestCode("a@x.com"))
	assert.ErrorIs(t, svc.RequestCode("a@x.com"), ErrRateLimited)

	// a different identity is unaffected
	assert.NoError(t, svc.RequestCode("b@x.com"))
}

func TestConcurrentRequestsOneWinner(t *testing.T) {
	svc, _, _ := newTestService(t)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.RequestCode("a@x.com")
		}()
	}
	wg.Wait()
	close(results)

	var ok, limited int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case err == ErrRateLimited:
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, limited)
}

func TestVerifyCodeSingleUse(t *testing.T) {
	svc, store, _ := newTestService(t)

	require.NoError(t, svc.RequestCode("a@x.com"))
	code, _ := store.Get("otp:a@x.com")

	require.NoError(t, svc.VerifyCode("a@x.com", code))
	assert.ErrorIs(t, svc.VerifyCode("a@x.com", code), ErrInvalidOrExpired)
}

func TestVerifyWrongCodeKeepsEntry(t *testing.T) {
	svc, store, _ := newTestService(t)

	require.NoError(t, svc.RequestCode("a@x.com"))
	code, _ := store.Get("otp:a@x.com")

	assert.ErrorIs(t, svc.VerifyCode("a@x.com", "000000"), ErrInvalidOrExpired)
	assert.NoError(t, svc.VerifyCode("a@x.com", code), "wrong attempt must not consume the code")
}

func TestVerifyWithoutIssuedCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.ErrorIs(t, svc.VerifyCode("a@x.com", "123456"), ErrInvalidOrExpired)
}

func TestPublishFailureRollsBack(t *testing.T) {
	svc, store, pub := newTestService(t)
	pub.err = assert.AnError

	require.Error(t, svc.RequestCode("a@x.com"))

	_, ok := store.Get("otp:a@x.com")
	assert.False(t, ok, "code must not survive a failed enqueue")

	pub.err = nil
	assert.NoError(t, svc.RequestCode("a@x.com"), "rate marker must be rolled back too")
}
