// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import "sync"

// Identity is the signed-in user as seen by the client.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

// TokenBinder is implemented by transports that attach a bearer token,
// such as *apiclient.Client.
type TokenBinder interface {
	SetToken(token string)
	ClearToken()
}

// Session is the identity provider for one client process. Signing in binds
// the token on every registered binder; signing out clears it.
type Session struct {
	mu        sync.RWMutex
	identity  *Identity
	binders   []TokenBinder
	listeners []func(Identity, bool)
}

func NewSession(binders ...TokenBinder) *Session {
	return &Session{binders: binders}
}

// OnChange registers fn to run after every sign-in (with true) and
// sign-out (with false).
func (s *Session) OnChange(fn func(id Identity, signedIn bool)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) SignIn(id Identity) {
	s.mu.Lock()
	s.identity = &id
	binders := s.binders
	listeners := s.listeners
	s.mu.Unlock()

	for _, b := range binders {
		b.SetToken(id.Token)
	}
	for _, fn := range listeners {
		fn(id, true)
	}
}

// SignOut clears the identity. Signing out twice is a no-op.
func (s *Session) SignOut() {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	prev := *s.identity
	s.identity = nil
	binders := s.binders
	listeners := s.listeners
	s.mu.Unlock()

	for _, b := range binders {
		b.ClearToken()
	}
	for _, fn := range listeners {
		fn(prev, false)
	}
}

func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Authenticated reports whether an identity is bound.
func (s *Session) Authenticated() bool {
	_, ok := s.Current()
	return ok
}
