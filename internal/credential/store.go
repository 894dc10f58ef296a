// Package credential holds the access token used against the upstream service.
package credential

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnavailable is returned when no usable credential is held.
var ErrUnavailable = errors.New("access credential unavailable")

// State is the lifecycle of the held credential.
type State int

const (
	StateMissing State = iota
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "missing"
	}
}

// Store is a process-scoped credential. An invalidated credential stays unusable
// until Replace installs a new one.
type Store struct {
	mu        sync.RWMutex
	token     string
	tokenType string
	state     State
	now       func() time.Time
}

// NewStore creates a store holding token. An empty tokenType defaults to Bearer.
func NewStore(token, tokenType string, now func() time.Time) *Store {
	if tokenType == "" {
		tokenType = "Bearer"
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{tokenType: tokenType, now: now}
	s.set(token)
	return s
}

func (s *Store) set(token string) {
	s.token = strings.TrimSpace(token)
	if s.token == "" {
		s.state = StateMissing
		return
	}
	s.state = StateValid
}

// Authorization returns the Authorization header value, or ErrUnavailable when the
// credential is missing, invalidated or a JWT past its exp claim.
func (s *Store) Authorization() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateValid {
		return "", ErrUnavailable
	}
	if expired(s.token, s.now()) {
		return "", ErrUnavailable
	}
	return s.tokenType + " " + s.token, nil
}

// Invalidate moves a valid credential to the invalid state. It reports whether this
// call performed the transition, so concurrent callers log it only once.
func (s *Store) Invalidate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateValid {
		return false
	}
	s.state = StateInvalid
	return true
}

// Replace installs a credential obtained out of band.
func (s *Store) Replace(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(token)
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Configured reports whether a non-empty credential was supplied, regardless of
// whether it is still usable.
func (s *Store) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// expired inspects the exp claim of a JWT without verifying its signature; the
// upstream does that. Opaque tokens never expire locally.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
