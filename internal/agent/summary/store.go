package summary

import (
	"sync"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// Store accumulates bullets per session. Each session has its own lock so the
// duplicate check and the append happen against the same state; concurrent
// sweeps on one session cannot both accept a near-duplicate.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionBullets
}

type sessionBullets struct {
	mu      sync.Mutex
	bullets []model.SummaryBullet
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*sessionBullets)}
}

func (s *Store) session(sessionID string) *sessionBullets {
	s.mu.Lock()
	defer s.mu.Unlock()

	sb, ok := s.sessions[sessionID]
	if !ok {
		sb = &sessionBullets{}
		s.sessions[sessionID] = sb
	}
	return sb
}

// Append dedups incoming against the session's bullets, stores the survivors
// and returns them.
func (s *Store) Append(sessionID string, incoming []model.SummaryBullet) []model.SummaryBullet {
	sb := s.session(sessionID)
	sb.mu.Lock()
	defer sb.mu.Unlock()

	accepted := Dedup(incoming, sb.bullets)
	sb.bullets = append(sb.bullets, accepted...)
	return accepted
}

// Bullets returns a copy of the session's bullets, oldest first.
func (s *Store) Bullets(sessionID string) []model.SummaryBullet {
	s.mu.Lock()
	sb, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return []model.SummaryBullet{}
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()
	return append([]model.SummaryBullet{}, sb.bullets...)
}

// Count returns the number of bullets held for the session.
func (s *Store) Count(sessionID string) int {
	s.mu.Lock()
	sb, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return 0
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()
	return len(sb.bullets)
}

func (s *Store) ResetSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Reset drops every session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*sessionBullets)
}
