package mcp

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Session store defaults.
const (
	DefaultSessionSize = 1024
	DefaultSessionTTL  = 30 * time.Minute

	// localSession keys transports without session ids, such as stdio.
	localSession = "local"
)

// SessionStore remembers which site each client session selected.
// Entries expire after a period of inactivity.
type SessionStore struct {
	sites *expirable.LRU[string, string]
}

// NewSessionStore creates a store holding at most size sessions for ttl.
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	return &SessionStore{sites: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Select records site as the session's current site.
func (s *SessionStore) Select(sessionID, site string) {
	s.sites.Add(sessionID, site)
}

// Current returns the session's selected site.
func (s *SessionStore) Current(sessionID string) (string, bool) {
	site, ok := s.sites.Get(sessionID)
	if ok {
		// Refresh the TTL on use.
		s.sites.Add(sessionID, site)
	}
	return site, ok
}

// Reset forgets the session's selection and reports whether there was one.
func (s *SessionStore) Reset(sessionID string) bool {
	return s.sites.Remove(sessionID)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.sites.Len()
}

// sessionID returns the id of the client session behind req.
func sessionID(session *mcp.ServerSession) string {
	if session == nil {
		return localSession
	}
	if id := session.ID(); id != "" {
		return id
	}
	return localSession
}
