package client

import "context"

// Action is what a protected view should do for the current session state.
type Action int

const (
	// Wait means the initial WhoAmI has not resolved yet.
	Wait Action = iota
	// Redirect means no user is logged in.
	Redirect
	// Allow means a user is logged in.
	Allow
)

func (a Action) String() string {
	switch a {
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	default:
		return "wait"
	}
}

// Decision is the result of evaluating a guard.
type Decision struct {
	Action Action
	// Location is set for Redirect.
	Location string
}

// DefaultLoginURL is where unauthenticated users are sent.
const DefaultLoginURL = "/login"

// Guard gates protected views on the session state.
type Guard struct {
	session  *Session
	loginURL string
}

// NewGuard returns a guard redirecting to loginURL, or DefaultLoginURL when
// loginURL is empty.
func NewGuard(session *Session, loginURL string) *Guard {
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	return &Guard{session: session, loginURL: loginURL}
}

// Evaluate decides from the current state without blocking.
func (g *Guard) Evaluate() Decision {
	st := g.session.State()
	switch {
	case st.Loading:
		return Decision{Action: Wait}
	case st.User == nil:
		return Decision{Action: Redirect, Location: g.loginURL}
	default:
		return Decision{Action: Allow}
	}
}

// Await blocks until the initial WhoAmI has resolved and then evaluates.
// It never returns Redirect before that point.
func (g *Guard) Await(ctx context.Context) (Decision, error) {
	select {
	case <-g.session.Ready():
		return g.Evaluate(), nil
	case <-ctx.Done():
		return Decision{Action: Wait}, ctx.Err()
	}
}
