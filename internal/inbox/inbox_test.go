package inbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMembership struct {
	open map[string]string // userId -> chatId
}

func (f *fakeMembership) IsMember(chatID, userID string) bool {
	return f.open[userID] == chatID
}

func TestUnseenCountWhileClosed(t *testing.T) {
	members := &fakeMembership{open: map[string]string{}}
	s := NewSynchronizer(members)

	users := []string{"a", "b"}
	base := time.Now()
	for i := 0; i < 3; i++ {
		s.OnMessageCreated("c1", "b", "hey", base.Add(time.Duration(i)*time.Second), users)
	}

	unseen, ok := s.Unseen("a", "c1")
	require.True(t, ok)
	assert.Equal(t, 3, unseen)

	unseen, _ = s.Unseen("b", "c1")
	assert.Equal(t, 0, unseen, "sender counter never changes")

	s.OnConversationOpened("a", "c1")
	unseen, _ = s.Unseen("a", "c1")
	assert.Equal(t, 0, unseen)
}

func TestNoIncrementWhileChatOpen(t *testing.T) {
	members := &fakeMembership{open: map[string]string{"a": "c1"}}
	s := NewSynchronizer(members)

	s.OnMessageCreated("c1", "b", "hey", time.Now(), []string{"a", "b"})

	unseen, ok := s.Unseen("a", "c1")
	require.True(t, ok)
	assert.Equal(t, 0, unseen)
}

func TestMoveToFrontOrdering(t *testing.T) {
	members := &fakeMembership{open: map[string]string{}}
	s := NewSynchronizer(members)

	base := time.Now()
	s.OnMessageCreated("c1", "b", "first", base, []string{"a", "b"})
	s.OnMessageCreated("c2", "b", "second", base.Add(time.Second), []string{"a", "b"})

	list := s.Snapshot("a")
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ChatID)
	assert.Equal(t, "c1", list[1].ChatID)

	s.OnMessageCreated("c1", "a", "reply", base.Add(2*time.Second), []string{"a", "b"})
	list = s.Snapshot("a")
	assert.Equal(t, "c1", list[0].ChatID)
}

func TestLatestSummaryWins(t *testing.T) {
	members := &fakeMembership{open: map[string]string{}}
	s := NewSynchronizer(members)

	base := time.Now()
	s.OnMessageCreated("c1", "b", "m1", base, []string{"a", "b"})
	s.OnMessageCreated("c1", "b", "m2", base.Add(time.Millisecond), []string{"a", "b"})

	list := s.Snapshot("a")
	require.Len(t, list, 1)
	assert.Equal(t, "m2", list[0].LastMessage)
}

func TestEmptyChatTieBreakByCreation(t *testing.T) {
	members := &fakeMembership{open: map[string]string{}}
	s := NewSynchronizer(members)

	base := time.Now()
	s.Seed("a", Entry{ChatID: "old", CreatedAt: base})
	s.Seed("a", Entry{ChatID: "new", CreatedAt: base.Add(time.Second)})

	list := s.Snapshot("a")
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ChatID)
}

func TestSeedDoesNotClobberLiveCounter(t *testing.T) {
	members := &fakeMembership{open: map[string]string{}}
	s := NewSynchronizer(members)

	s.OnMessageCreated("c1", "b", "hey", time.Now(), []string{"a", "b"})
	s.Seed("a", Entry{ChatID: "c1", UnseenCount: 0})

	unseen, _ := s.Unseen("a", "c1")
	assert.Equal(t, 1, unseen)
}
