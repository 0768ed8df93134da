// Package locks implements advisory, timeout-bounded mutual exclusion keyed
// by resource name. Room mutations acquire "room:<code>" before any
// read-modify-write sequence; room creation additionally guards
// "room_creation:<code>".
//
// The lock is advisory: it only protects code paths that route through it.
// A lock held past the staleness threshold is treated as abandoned and
// reclaimed, so a handler that dies mid-critical-section cannot wedge a
// room forever. The Manager interface keeps callers independent of the
// in-process implementation, so an external coordination service could be
// substituted without touching call sites.
package locks

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTimeout is returned when a lock cannot be acquired within the timeout.
// Callers should treat it as "resource busy, retry".
var ErrTimeout = errors.New("lock acquisition timed out")

// Token identifies a single acquisition. Release is a no-op unless the token
// matches the current holder, so a stale holder cannot release a lock it
// lost to reclamation.
type Token string

type Manager interface {
	Acquire(name string, timeout time.Duration) (Token, error)
	Release(name string, token Token) bool
}

type holder struct {
	token      Token
	acquiredAt time.Time
}

// InProcess is the single-process Manager backed by a map of named holders.
type InProcess struct {
	mu         sync.Mutex
	held       map[string]holder
	staleAfter time.Duration
	retryDelay time.Duration
}

const (
	DefaultStaleAfter = 30 * time.Second
	defaultRetryDelay = 10 * time.Millisecond
)

func NewInProcess(staleAfter time.Duration) *InProcess {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &InProcess{
		held:       make(map[string]holder),
		staleAfter: staleAfter,
		retryDelay: defaultRetryDelay,
	}
}

// Acquire takes the named lock, polling until the timeout elapses. A holder
// older than the staleness threshold is silently reclaimed.
func (m *InProcess) Acquire(name string, timeout time.Duration) (Token, error) {
	token := Token(uuid.NewString())
	deadline := time.Now().Add(timeout)

	for {
		m.mu.Lock()
		h, taken := m.held[name]
		if taken && time.Since(h.acquiredAt) > m.staleAfter {
			delete(m.held, name)
			taken = false
		}
		if !taken {
			m.held[name] = holder{token: token, acquiredAt: time.Now()}
			m.mu.Unlock()
			return token, nil
		}
		m.mu.Unlock()

		if time.Now().After(deadline) {
			return "", ErrTimeout
		}
		time.Sleep(m.retryDelay)
	}
}

// Release frees the named lock if token matches the current holder,
// reporting whether anything was released.
func (m *InProcess) Release(name string, token Token) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.held[name]; ok && h.token == token {
		delete(m.held, name)
		return true
	}
	return false
}

// IsLocked reports whether the named lock currently has a holder.
func (m *InProcess) IsLocked(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[name]
	return ok
}
