package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admindash/internal/client"
	"admindash/internal/model"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) WhoAmI(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ client.AuthAPI = (*MockAuthAPI)(nil)
var _ client.AuthAPI = (*client.HTTPClient)(nil)

type recorder struct {
	mu     sync.Mutex
	states []client.State
}

func (r *recorder) record(s client.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) all() []client.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]client.State(nil), r.states...)
}

func TestSession_StartsLoading(t *testing.T) {
	s := client.NewSession(new(MockAuthAPI))

	st := s.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)

	select {
	case <-s.Ready():
		t.Fatal("ready before Init")
	default:
	}
}

func TestSession_Init(t *testing.T) {
	ann := &model.User{ID: "u1", Name: "Ann", Email: "ann@x.io"}

	tests := []struct {
		name     string
		user     *model.User
		err      error
		wantUser *model.User
	}{
		{name: "logged in", user: ann, wantUser: ann},
		{name: "no session", err: &client.APIError{StatusCode: 401, Message: "No authentication token found"}},
		{name: "server down", err: client.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAuthAPI)
			api.On("WhoAmI", mock.Anything).Return(tt.user, tt.err).Once()

			s := client.NewSession(api)
			rec := &recorder{}
			s.Subscribe(rec.record)

			s.Init(context.Background())
			s.Init(context.Background())

			<-s.Ready()
			st := s.State()
			assert.False(t, st.Loading)
			assert.Equal(t, tt.wantUser, st.User)
			assert.Len(t, rec.all(), 1)
			api.AssertNumberOfCalls(t, "WhoAmI", 1)
		})
	}
}

func TestSession_LoginFailureLeavesStateUntouched(t *testing.T) {
	api := new(MockAuthAPI)
	api.On("WhoAmI", mock.Anything).Return(nil, &client.APIError{StatusCode: 401, Message: "No authentication token found"})
	api.On("Login", mock.Anything, "ann@x.io", "wrong").
		Return(nil, &client.APIError{StatusCode: 401, Message: "Invalid email or password"})

	s := client.NewSession(api)
	s.Init(context.Background())

	rec := &recorder{}
	s.Subscribe(rec.record)

	user, err := s.Login(context.Background(), "ann@x.io", "wrong")
	assert.Nil(t, user)
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Nil(t, s.State().User)
	assert.Empty(t, rec.all())
}

func TestSession_LoginAndLogout(t *testing.T) {
	ann := &model.User{ID: "u1", Email: "ann@x.io"}
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, "ann@x.io", "secret1").Return(ann, nil)
	api.On("Logout", mock.Anything).Return(errors.New("connection reset"))

	s := client.NewSession(api)
	rec := &recorder{}
	s.Subscribe(rec.record)

	user, err := s.Login(context.Background(), "ann@x.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, ann, user)
	assert.Equal(t, ann, s.State().User)

	err = s.Logout(context.Background())
	assert.Error(t, err)
	assert.Nil(t, s.State().User)

	states := rec.all()
	require.Len(t, states, 2)
	assert.Equal(t, ann, states[0].User)
	assert.Nil(t, states[1].User)
}

func TestSession_LoginDuringInitIsKept(t *testing.T) {
	ann := &model.User{ID: "u1", Email: "ann@x.io"}
	release := make(chan struct{})
	api := new(MockAuthAPI)
	api.On("WhoAmI", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil, &client.APIError{StatusCode: 401, Message: "No authentication token found"})
	api.On("Login", mock.Anything, "ann@x.io", "secret1").Return(ann, nil)

	s := client.NewSession(api)
	initDone := make(chan struct{})
	go func() {
		s.Init(context.Background())
		close(initDone)
	}()

	_, err := s.Login(context.Background(), "ann@x.io", "secret1")
	require.NoError(t, err)

	close(release)
	<-initDone

	st := s.State()
	assert.False(t, st.Loading)
	assert.Equal(t, ann, st.User)
	<-s.Ready()
}

func TestSession_Unsubscribe(t *testing.T) {
	ann := &model.User{ID: "u1"}
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(ann, nil)

	s := client.NewSession(api)
	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.record)
	unsubscribe()
	unsubscribe()

	_, err := s.Login(context.Background(), "ann@x.io", "secret1")
	require.NoError(t, err)
	assert.Empty(t, rec.all())
}

func TestSession_SubscriberMayReadState(t *testing.T) {
	ann := &model.User{ID: "u1"}
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(ann, nil)

	s := client.NewSession(api)
	var seen *model.User
	s.Subscribe(func(client.State) {
		seen = s.State().User
	})

	_, err := s.Login(context.Background(), "ann@x.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, ann, seen)
}

func TestSession_RefreshClearsOnUnauthorized(t *testing.T) {
	ann := &model.User{ID: "u1"}
	api := new(MockAuthAPI)
	api.On("WhoAmI", mock.Anything).Return(ann, nil).Once()
	api.On("WhoAmI", mock.Anything).Return(nil, &client.APIError{StatusCode: 404, Message: "User not found or inactive"}).Once()

	s := client.NewSession(api)
	s.Init(context.Background())
	require.Equal(t, ann, s.State().User)

	err := s.Refresh(context.Background())
	assert.Error(t, err)
	assert.Nil(t, s.State().User)
}

func TestSession_AgainstServer(t *testing.T) {
	srv := newServer(t)
	api := newAPI(t, srv)
	registerAnn(t, api)
	ctx := context.Background()

	s := client.NewSession(api)
	s.Init(ctx)
	require.NotNil(t, s.State().User)
	assert.Equal(t, "ann@x.io", s.State().User.Email)

	require.NoError(t, s.Logout(ctx))
	assert.Nil(t, s.State().User)
	assert.Empty(t, api.SessionToken())

	err := s.Refresh(ctx)
	assert.True(t, client.IsUnauthorized(err))
}
