package client

import (
	"context"
	"errors"
	"sync"

	"admindash/internal/model"
)

// AuthAPI is the part of the server API the session depends on.
type AuthAPI interface {
	WhoAmI(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	Logout(ctx context.Context) error
}

// State is a snapshot of the client's view of the session.
type State struct {
	User    *model.User
	Loading bool
}

// Authenticated reports whether the state carries a user.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Session holds the current user for one client. It starts loading and
// settles after the first WhoAmI call made by Init.
type Session struct {
	api AuthAPI

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int

	initOnce sync.Once
	ready    chan struct{}
}

// NewSession returns a session in the loading state.
func NewSession(api AuthAPI) *Session {
	return &Session{
		api:   api,
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
		ready: make(chan struct{}),
	}
}

// Init asks the server who the current user is. Only the first call does
// any work; later calls return immediately. Any failure settles the
// session as logged out.
func (s *Session) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		user, err := s.api.WhoAmI(ctx)
		if err != nil {
			user = nil
		}
		s.settle(user)
		close(s.ready)
	})
}

// Ready is closed once the initial WhoAmI has resolved.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for future state changes and returns a function
// that removes it. fn is not called with the current state.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Login authenticates against the server. On failure the state is left
// untouched and the returned error carries the server's message.
func (s *Session) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("login response carried no user")
	}
	s.set(State{User: user})
	return user, nil
}

// Logout asks the server to end the session and clears the local user
// whatever the outcome. The server error, if any, is returned.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.set(State{})
	return err
}

// Refresh re-reads the current user from the server.
func (s *Session) Refresh(ctx context.Context) error {
	user, err := s.api.WhoAmI(ctx)
	if err != nil {
		if IsUnauthorized(err) || isNotFound(err) {
			s.set(State{})
		}
		return err
	}
	s.set(State{User: user})
	return nil
}

func (s *Session) set(next State) {
	s.apply(next, false)
}

// settle records the initial WhoAmI result unless a Login or Logout has
// already settled the session.
func (s *Session) settle(user *model.User) {
	s.apply(State{User: user}, true)
}

func (s *Session) apply(next State, onlyWhileLoading bool) {
	s.mu.Lock()
	if onlyWhileLoading && !s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state = next
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
