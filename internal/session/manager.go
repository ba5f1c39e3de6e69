package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
	"github.com/chanombude/twitter-go-client/internal/metrics"
)

type State string

const (
	StateAnonymous     State = "ANONYMOUS"
	StateAuthenticated State = "AUTHENTICATED"
	StateRefreshing    State = "REFRESHING"
	StateLoggedOut     State = "LOGGED_OUT"
)

type EventKind string

const (
	EventSignedIn     EventKind = "signed_in"
	EventTokenRotated EventKind = "token_rotated"
	EventSignedOut    EventKind = "signed_out"
)

// Event tells watchers (the notification stream, the UI shell) that the
// credential changed. SignedOut doubles as the sign-in-required signal.
type Event struct {
	Kind EventKind
}

type authAPI interface {
	Refresh(ctx context.Context) (common.AuthSession, error)
	Me(ctx context.Context) (common.User, error)
	Logout(ctx context.Context) error
}

// Manager holds the access token and the viewer profile, refreshes the token
// on authorization failure and signals watchers on every credential change.
type Manager struct {
	api     authAPI
	file    string
	log     log.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	state    State
	token    string
	user     *common.User
	inflight *refreshCall
	watchers []chan Event
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// NewManager builds a session manager persisting the token to file (empty
// path disables persistence).
func NewManager(api authAPI, file string, logger log.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		api:     api,
		file:    file,
		state:   StateAnonymous,
		log:     logger,
		metrics: m,
	}
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

func (m *Manager) CurrentUser() (common.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return common.User{}, false
	}

	return *m.user, true
}

// Watch returns a channel of credential-change events. Delivery is best
// effort; a lagging watcher loses events rather than blocking the session.
func (m *Manager) Watch() <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Event, 4)
	m.watchers = append(m.watchers, ch)

	return ch
}

// SetAuth installs a fresh credential, e.g. after an interactive login.
func (m *Manager) SetAuth(token string, user common.User) {
	m.mu.Lock()
	m.token = token
	u := user.Clone()
	m.user = &u
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.persist(token)
	m.emit(EventSignedIn)
}

// SetUser replaces the cached viewer profile, e.g. after a profile edit.
func (m *Manager) SetUser(user common.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := user.Clone()
	m.user = &u
}

// Refresh exchanges the out-of-band credential for a new token. Concurrent
// callers coalesce on one in-flight exchange. An irrecoverable failure clears
// the session and signals watchers to prompt for sign-in.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()

	if rc := m.inflight; rc != nil {
		m.mu.Unlock()

		select {
		case <-rc.done:
			return rc.token, rc.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	rc := &refreshCall{done: make(chan struct{})}
	m.inflight = rc
	m.state = StateRefreshing
	m.mu.Unlock()

	sess, err := m.api.Refresh(ctx)

	if err != nil {
		m.metrics.TokenRefresh("failure")
		m.log.WithError(err).Warn("token refresh failed, session is over")
		m.clear()
		m.emit(EventSignedOut)

		rc.err = fmt.Errorf("%w: refresh rejected", common.ErrSessionExpired)
	} else {
		m.metrics.TokenRefresh("success")

		m.mu.Lock()
		m.token = sess.AccessToken
		u := sess.User.Clone()
		m.user = &u
		m.state = StateAuthenticated
		m.mu.Unlock()

		m.persist(sess.AccessToken)
		m.emit(EventTokenRotated)

		rc.token = sess.AccessToken
	}

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()

	close(rc.done)

	return rc.token, rc.err
}

// Bootstrap restores a persisted token on startup and validates it once
// against the current-user endpoint. A token already past its expiry claim
// skips the doomed validation call and goes straight to refresh.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.loadToken()
	if err != nil {
		m.log.WithError(err).Warn("reading persisted token")
	}

	if token == "" {
		return nil
	}

	m.mu.Lock()
	m.token = token
	m.state = StateAuthenticated
	m.mu.Unlock()

	if tokenExpired(token) {
		m.log.Debug("persisted token expired, refreshing")

		if _, err = m.Refresh(ctx); err != nil {
			return err
		}

		m.emit(EventSignedIn)

		return nil
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		// The client already attempted one refresh-and-replay on 401.
		m.clear()
		m.emit(EventSignedOut)

		return fmt.Errorf("validate persisted session: %w", err)
	}

	m.mu.Lock()
	u := user.Clone()
	m.user = &u
	m.mu.Unlock()

	m.emit(EventSignedIn)

	return nil
}

// Logout ends the session. The server call is best effort; local state is
// cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.log.WithError(err).Warn("server logout")
	}

	m.clear()
	m.emit(EventSignedOut)
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.state = StateLoggedOut
	m.mu.Unlock()

	m.persist("")
}

func (m *Manager) emit(kind EventKind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.watchers {
		select {
		case ch <- Event{Kind: kind}:
		default:
		}
	}
}
