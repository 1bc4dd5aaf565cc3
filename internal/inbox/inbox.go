package inbox

import (
	"sort"
	"sync"
	"time"
)

// Membership answers whether a user currently has a chat open. Satisfied by
// the hub; injected so the synchronizer never reaches into connection state.
type Membership interface {
	IsMember(chatID, userID string) bool
}

// Entry is one row of a user's chat list.
type Entry struct {
	ChatID       string    `json:"chatId"`
	LastMessage  string    `json:"lastMessage"`
	LastSender   string    `json:"lastSender"`
	UnseenCount  int       `json:"unseenCount"`
	LastActivity time.Time `json:"lastActivity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Synchronizer maintains each user's chat list: most-recently-active first
// with a per-chat unseen counter. All mutations are atomic under one lock so
// concurrent send/open events cannot produce a lost update.
type Synchronizer struct {
	mu      sync.Mutex
	lists   map[string]map[string]*Entry // userId -> chatId -> entry
	members Membership
}

func NewSynchronizer(members Membership) *Synchronizer {
	return &Synchronizer{
		lists:   make(map[string]map[string]*Entry),
		members: members,
	}
}

func (s *Synchronizer) ensure(userID string) map[string]*Entry {
	list, ok := s.lists[userID]
	if !ok {
		list = make(map[string]*Entry)
		s.lists[userID] = list
	}
	return list
}

// Seed registers a stored chat in userID's list without clobbering counters
// already accumulated by live events.
func (s *Synchronizer) Seed(userID string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.ensure(userID)
	if _, ok := list[e.ChatID]; ok {
		return
	}
	cp := e
	list[e.ChatID] = &cp
}

// OnMessageCreated moves the chat to the front of every participant's list
// and updates its preview. The recipient's unseen counter grows by one unless
// they currently have the chat open; the sender's counter never changes.
func (s *Synchronizer) OnMessageCreated(chatID, senderID, summary string, at time.Time, participants []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range participants {
		list := s.ensure(userID)
		e, ok := list[chatID]
		if !ok {
			e = &Entry{ChatID: chatID, CreatedAt: at}
			list[chatID] = e
		}
		e.LastMessage = summary
		e.LastSender = senderID
		e.LastActivity = at
		if userID != senderID && !s.members.IsMember(chatID, userID) {
			e.UnseenCount++
		}
	}
}

// OnConversationOpened resets userID's unseen counter for chatID.
func (s *Synchronizer) OnConversationOpened(userID, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lists[userID][chatID]; ok {
		e.UnseenCount = 0
	}
}

// Snapshot returns userID's chat list ordered by last activity descending.
// Chats with equal activity timestamps (fresh chats with no messages yet)
// fall back to creation time, newest first.
func (s *Synchronizer) Snapshot(userID string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[userID]
	out := make([]Entry, 0, len(list))
	for _, e := range list {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].LastActivity.After(out[j].LastActivity)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Unseen returns the live unseen count for one chat, if tracked.
func (s *Synchronizer) Unseen(userID, chatID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lists[userID][chatID]
	if !ok {
		return 0, false
	}
	return e.UnseenCount, true
}
