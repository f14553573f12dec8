package websocket

import "sync"

// Handle is what the hub needs from a live agent session.
type Handle interface {
	Close()
	Done() <-chan struct{}
}

// Hub tracks at most one live agent session per meeting
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]Handle // key: meeting id
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]Handle),
	}
}

// Add registers session for meetingID, closing any session it replaces.
// The entry is dropped automatically once the session is done.
func (h *Hub) Add(meetingID string, session Handle) (replaced bool) {
	h.mu.Lock()
	old, exists := h.sessions[meetingID]
	h.sessions[meetingID] = session
	h.mu.Unlock()

	if exists && old != session {
		old.Close()
		replaced = true
	}

	go func() {
		<-session.Done()
		h.removeIf(meetingID, session)
	}()

	return replaced
}

func (h *Hub) Get(meetingID string) Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.sessions[meetingID]
}

// Remove closes and forgets the session for meetingID, if any.
func (h *Hub) Remove(meetingID string) bool {
	h.mu.Lock()
	session, exists := h.sessions[meetingID]
	delete(h.sessions, meetingID)
	h.mu.Unlock()

	if exists {
		session.Close()
	}
	return exists
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]Handle)
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (h *Hub) removeIf(meetingID string, session Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[meetingID] == session {
		delete(h.sessions, meetingID)
	}
}
