package store

import (
	"sync"
	"time"
)

// memoryStore keeps all records in process memory. It backs the test
// suites and the demo CLI when no database is configured.
type memoryStore struct {
	mu       sync.RWMutex
	users    map[uint]*User
	tokens   map[uint]*ResetToken
	sessions map[string]*Session
	nextUser uint
	nextTok  uint
}

func NewMemory() Store {
	return &memoryStore{
		users:    make(map[uint]*User),
		tokens:   make(map[uint]*ResetToken),
		sessions: make(map[string]*Session),
	}
}

func (s *memoryStore) Users() Users             { return (*memoryUsers)(s) }
func (s *memoryStore) ResetTokens() ResetTokens { return (*memoryTokens)(s) }
func (s *memoryStore) Sessions() Sessions       { return (*memorySessions)(s) }

func cloneUser(u *User) *User {
	c := *u
	if u.LockedUntil != nil {
		t := *u.LockedUntil
		c.LockedUntil = &t
	}
	return &c
}

func cloneToken(t *ResetToken) *ResetToken {
	c := *t
	if t.ConsumedAt != nil {
		at := *t.ConsumedAt
		c.ConsumedAt = &at
	}
	return &c
}

type memoryUsers memoryStore

func (s *memoryUsers) Create(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}

	s.nextUser++
	user.ID = s.nextUser
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *memoryUsers) ByID(id uint) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *memoryUsers) ByUsername(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUsers) ByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUsers) UpdatePasswordHash(id uint, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *memoryUsers) UpdateLockout(id uint, failedCount int, lockedUntil *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.FailedLoginCount = failedCount
	if lockedUntil != nil {
		t := *lockedUntil
		u.LockedUntil = &t
	} else {
		u.LockedUntil = nil
	}
	return nil
}

type memoryTokens memoryStore

func (s *memoryTokens) Put(token *ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.TokenHash == token.TokenHash {
			return ErrDuplicate
		}
	}

	s.nextTok++
	token.ID = s.nextTok
	s.tokens[token.ID] = cloneToken(token)
	return nil
}

func (s *memoryTokens) ByHash(hash string) (*ResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.TokenHash == hash {
			return cloneToken(t), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryTokens) MarkConsumed(id uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok {
		return ErrNotFound
	}
	t.ConsumedAt = &at
	return nil
}

func (s *memoryTokens) DeleteForUser(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *memoryTokens) DeleteExpired(before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tokens {
		if t.ExpiresAt.Before(before) {
			delete(s.tokens, id)
		}
	}
	return nil
}

type memorySessions memoryStore

func (s *memorySessions) Put(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.Token]; exists {
		return ErrDuplicate
	}
	c := *session
	s.sessions[session.Token] = &c
	return nil
}

func (s *memorySessions) Get(token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	c := *sess
	return &c, nil
}

func (s *memorySessions) UpdateLastSeen(token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	sess.LastSeenAt = at
	return nil
}

func (s *memorySessions) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *memorySessions) DeleteExpired(before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.LastSeenAt.Before(before) {
			delete(s.sessions, token)
		}
	}
	return nil
}
