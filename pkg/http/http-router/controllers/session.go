package controllers

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const MAX_SESSIONS = 1024

// SessionStore checks credentials and hands out tickets that expire ttl after login.
type SessionStore struct {
	users   map[string]string
	tickets *expirable.LRU[string, string]
}

func NewSessionStore(users map[string]string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		users:   users,
		tickets: expirable.NewLRU[string, string](MAX_SESSIONS, nil, ttl),
	}
}

// Login returns a new ticket, or false when the credentials are wrong.
func (s *SessionStore) Login(user, password string) (string, bool) {
	expected, ok := s.users[user]
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return "", false
	}
	ticket := uuid.NewString()
	s.tickets.Add(ticket, user)
	return ticket, true
}

// User returns who owns ticket, if the ticket is still valid.
func (s *SessionStore) User(ticket string) (string, bool) {
	if ticket == "" {
		return "", false
	}
	return s.tickets.Get(ticket)
}
