// Package guard is the per-navigation access-control decision point. It
// never mutates session state beyond triggering initialization and proactive
// refresh; the outcome is a Decision the application router executes.
package guard

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deskhive/go-sdk/token"
)

// Route is a navigation target's declared requirements.
type Route struct {
	Name                string
	Path                string
	RequiresAuth        bool
	RequiresGuest       bool
	AllowedRoles        []string
	PasswordChangeRoute bool
}

// Action is what the router must do with a navigation.
type Action int

const (
	ActionAllow Action = iota
	ActionRedirectLogin
	ActionRedirectPasswordChange
	ActionRedirectDenied
	ActionRedirectLanding
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionRedirectLogin:
		return "redirect-login"
	case ActionRedirectPasswordChange:
		return "redirect-password-change"
	case ActionRedirectDenied:
		return "redirect-denied"
	case ActionRedirectLanding:
		return "redirect-landing"
	}
	return "unknown"
}

// Decision is the outcome of evaluating one navigation.
type Decision struct {
	Action Action
	Target string
}

// Allowed reports whether the navigation may proceed as requested.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// Paths are the redirect destinations the guard hands out.
type Paths struct {
	Login          string
	PasswordChange string
	Denied         string
	Landing        string
}

// DefaultPaths mirrors the application's route table.
func DefaultPaths() Paths {
	return Paths{
		Login:          "/auth/login",
		PasswordChange: "/auth/change-password",
		Denied:         "/auth/access",
		Landing:        "/",
	}
}

// Session is the slice of the session the guard consults.
type Session interface {
	Initialized() bool
	Initialize(ctx context.Context)
	IsAuthenticated() bool
	User() *token.Claims
	IsTokenExpiring() bool
	RefreshSession(ctx context.Context) bool
	HasRole(role string) bool
}

// PathStore persists the originally intended path across a login redirect.
type PathStore interface {
	SaveRedirectPath(path string)
	ConsumeRedirectPath() (string, bool)
}

// Guard evaluates navigations against the current session.
type Guard struct {
	session Session
	store   PathStore
	paths   Paths
	logger  zerolog.Logger
}

// Option modifies a Guard.
type Option func(*Guard)

// WithPaths overrides the redirect destinations.
func WithPaths(paths Paths) Option {
	return func(g *Guard) {
		g.paths = paths
	}
}

// WithLogger sets the guard logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a Guard.
func New(sess Session, store PathStore, options ...Option) *Guard {
	g := &Guard{
		session: sess,
		store:   store,
		paths:   DefaultPaths(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Evaluate decides one navigation. The rules apply in strict priority order:
// forced password change beats everything (the login route included), then
// role checks, then authentication, then proactive expiry, then guest-only.
func (g *Guard) Evaluate(ctx context.Context, route Route) Decision {
	if !g.session.Initialized() {
		// Initialization converts its own failures into a clean
		// unauthenticated session, so there is nothing to handle here.
		g.session.Initialize(ctx)
	}

	if user := g.session.User(); g.session.IsAuthenticated() && user != nil && user.MustChangePassword {
		if route.PasswordChangeRoute {
			return Decision{Action: ActionAllow}
		}
		g.logger.Debug().Str("route", route.Path).Msg("forcing password change")
		return Decision{Action: ActionRedirectPasswordChange, Target: g.paths.PasswordChange}
	}

	if len(route.AllowedRoles) > 0 && g.session.IsAuthenticated() {
		if !g.hasAnyRole(route.AllowedRoles) {
			g.logger.Debug().Str("route", route.Path).Msg("role denied")
			return Decision{Action: ActionRedirectDenied, Target: g.paths.Denied}
		}
	}

	needsAuth := route.RequiresAuth || len(route.AllowedRoles) > 0

	if needsAuth && !g.session.IsAuthenticated() {
		return g.blockForLogin(route)
	}

	if needsAuth && g.session.IsTokenExpiring() {
		if !g.session.RefreshSession(ctx) {
			return g.blockForLogin(route)
		}
	}

	if route.RequiresGuest && g.session.IsAuthenticated() {
		target := g.paths.Landing
		if saved, ok := g.store.ConsumeRedirectPath(); ok {
			target = saved
		}
		return Decision{Action: ActionRedirectLanding, Target: target}
	}

	return Decision{Action: ActionAllow}
}

func (g *Guard) blockForLogin(route Route) Decision {
	g.store.SaveRedirectPath(route.Path)
	return Decision{Action: ActionRedirectLogin, Target: g.paths.Login}
}

func (g *Guard) hasAnyRole(roles []string) bool {
	for _, role := range roles {
		if g.session.HasRole(role) {
			return true
		}
	}
	return false
}
