// Package storage persists the session's token pair across credential tiers.
//
// Exactly one tier holds the live pair at a time: the durable tier when the
// user asked to be remembered, otherwise the ephemeral tier (or a cookie tier
// whose entries expire with the access token itself). Writing a tier clears
// the others so a stale credential can never resurrect a session.
package storage

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// TokenPair is the access/refresh credential pair as persisted.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether the pair carries no usable credential.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Tier is a single storage backend for the token pair.
type Tier interface {
	Save(pair TokenPair, expiry time.Time) error
	Load() (TokenPair, bool)
	Clear()
}

// Tiered coordinates the durable, cookie and ephemeral tiers and owns the
// ephemeral redirect-path slot used by the navigation guard.
type Tiered struct {
	durable   Tier
	cookie    Tier
	ephemeral Tier

	mu           sync.Mutex
	redirectPath string
}

// Option modifies a Tiered store.
type Option func(*Tiered)

// WithCookieTier adds a cookie tier scoped to the API origin. When present it
// receives not-remembered credentials instead of the in-memory tier.
func WithCookieTier(baseURL string) Option {
	return func(s *Tiered) {
		if tier, err := NewCookieTier(baseURL); err == nil {
			s.cookie = tier
		}
	}
}

// WithDurableTier replaces the default file-backed durable tier.
func WithDurableTier(tier Tier) Option {
	return func(s *Tiered) {
		s.durable = tier
	}
}

// NewTiered creates a store whose durable tier lives under stateDir.
func NewTiered(stateDir string, options ...Option) *Tiered {
	store := &Tiered{
		durable:   NewFileTier(stateDir),
		ephemeral: NewMemoryTier(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store
}

// Save persists the pair in the tier selected by rememberMe and clears every
// other tier. expiry is the access token's own expiry, honored by the cookie
// tier.
func (s *Tiered) Save(pair TokenPair, rememberMe bool, expiry time.Time) error {
	if rememberMe {
		s.clearEphemeral()
		if err := s.durable.Save(pair, expiry); err != nil {
			return errors.Wrap(err, "[Tiered.Save] durable tier")
		}
		return nil
	}

	s.durable.Clear()
	if s.cookie != nil {
		s.ephemeral.Clear()
		if err := s.cookie.Save(pair, expiry); err != nil {
			return errors.Wrap(err, "[Tiered.Save] cookie tier")
		}
		return nil
	}
	if err := s.ephemeral.Save(pair, expiry); err != nil {
		return errors.Wrap(err, "[Tiered.Save] ephemeral tier")
	}
	return nil
}

// Load probes the tiers in fixed priority order (durable, cookie, ephemeral)
// and returns the first non-empty pair.
func (s *Tiered) Load() (TokenPair, bool) {
	for _, tier := range s.tiers() {
		if pair, ok := tier.Load(); ok && !pair.Empty() {
			return pair, true
		}
	}
	return TokenPair{}, false
}

// Clear removes the pair from all tiers unconditionally.
func (s *Tiered) Clear() {
	for _, tier := range s.tiers() {
		tier.Clear()
	}
}

// SaveRedirectPath records the navigation target that was blocked pending
// login. It lives in process memory, the analog of per-tab session storage.
func (s *Tiered) SaveRedirectPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirectPath = path
}

// ConsumeRedirectPath returns the saved path and removes it, so it is
// honored exactly once.
func (s *Tiered) ConsumeRedirectPath() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.redirectPath
	s.redirectPath = ""
	return path, path != ""
}

func (s *Tiered) tiers() []Tier {
	tiers := []Tier{s.durable}
	if s.cookie != nil {
		tiers = append(tiers, s.cookie)
	}
	return append(tiers, s.ephemeral)
}

func (s *Tiered) clearEphemeral() {
	s.ephemeral.Clear()
	if s.cookie != nil {
		s.cookie.Clear()
	}
}
