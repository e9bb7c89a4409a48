// Package session owns the single, lazily created Homey session shared by all tool calls.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/qmuntal/stateless"
	"golang.org/x/sync/singleflight"

	"github.com/comigor/homey-mcp/internal/homey"
	"github.com/comigor/homey-mcp/internal/logger"
)

// State is the lifecycle state of the managed session.
type State string

const (
	StateDisconnected State = "Disconnected"
	StateConnecting   State = "Connecting"
	StateConnected    State = "Connected" // Terminal: lives until the process exits
)

type trigger string

const (
	triggerConnect   trigger = "Connect"
	triggerSucceeded trigger = "Succeeded" // arg: homey.Session
	triggerFailed    trigger = "Failed"    // arg: error
)

// DialFunc performs the authentication handshake.
type DialFunc func(ctx context.Context, address, token string) (homey.Session, error)

// Credentials are the out-of-band values needed to reach Homey.
type Credentials struct {
	Address string
	Token   string
}

func (c Credentials) complete() bool {
	return c.Token != "" && c.Address != ""
}

// Option customizes a Manager.
type Option func(*Manager)

// WithDialer replaces the Homey handshake, mostly for tests.
func WithDialer(dial DialFunc) Option {
	return func(m *Manager) { m.dial = dial }
}

// WithConnectObserver is called once per handshake attempt with its outcome.
func WithConnectObserver(fn func(err error)) Option {
	return func(m *Manager) { m.observe = fn }
}

// WithStateObserver is called with the initial state and after every transition.
// It runs while the Manager is locked and must not call back into it.
func WithStateObserver(fn func(State)) Option {
	return func(m *Manager) { m.onState = fn }
}

// Manager memoizes one Homey session. Concurrent first callers share a single handshake.
type Manager struct {
	creds   Credentials
	dial    DialFunc
	observe func(err error)
	onState func(State)

	group singleflight.Group

	mu      sync.Mutex // guards fsm and session
	session homey.Session
	fsm     *stateless.StateMachine
}

// NewManager creates a Manager. Nothing is contacted until EnsureConnected.
func NewManager(creds Credentials, opts ...Option) *Manager {
	m := &Manager{
		creds: creds,
		dial:  dialHomey,
		fsm:   stateless.NewStateMachine(StateDisconnected),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.fsm.Configure(StateDisconnected).
		Permit(triggerConnect, StateConnecting).
		OnEntryFrom(triggerFailed, m.onFailed)
	m.fsm.Configure(StateConnecting).
		Permit(triggerSucceeded, StateConnected).
		Permit(triggerFailed, StateDisconnected).
		OnEntry(func(_ context.Context, _ ...any) error {
			logger.L.Info("connecting to Homey", "address", m.creds.Address)
			return nil
		})
	m.fsm.Configure(StateConnected).
		OnEntryFrom(triggerSucceeded, m.onConnected)

	m.fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		if m.onState != nil {
			m.onState(t.Destination.(State))
		}
	})
	if m.onState != nil {
		m.onState(StateDisconnected)
	}

	return m
}

func dialHomey(ctx context.Context, address, token string) (homey.Session, error) {
	c, err := homey.Connect(ctx, address, token)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (m *Manager) onConnected(_ context.Context, args ...any) error {
	m.session = args[0].(homey.Session)
	if m.observe != nil {
		m.observe(nil)
	}
	logger.L.Info("connected to Homey", "address", m.creds.Address)
	return nil
}

func (m *Manager) onFailed(_ context.Context, args ...any) error {
	err, _ := args[0].(error)
	if m.observe != nil {
		m.observe(err)
	}
	logger.L.Error("Homey handshake failed", "address", m.creds.Address, "error", err)
	return nil
}

// EnsureConnected returns the session, authenticating on first use.
// A failed handshake stores nothing, so the next call tries again.
func (m *Manager) EnsureConnected(ctx context.Context) (homey.Session, error) {
	if s, ok := m.connected(); ok {
		return s, nil
	}

	if !m.creds.complete() {
		return nil, &ConfigurationError{}
	}

	v, err, shared := m.group.Do("connect", func() (any, error) {
		return m.connect(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.L.Debug("joined in-flight Homey handshake")
	}
	return v.(homey.Session), nil
}

// State reports where the session is in its lifecycle.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.MustState().(State)
}

func (m *Manager) connected() (homey.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fsm.MustState() != StateConnected {
		return nil, false
	}
	return m.session, true
}

func (m *Manager) connect(ctx context.Context) (homey.Session, error) {
	m.mu.Lock()
	if m.fsm.MustState() == StateConnected {
		s := m.session
		m.mu.Unlock()
		return s, nil
	}
	if err := m.fsm.FireCtx(ctx, triggerConnect); err != nil {
		m.mu.Unlock()
		return nil, &ConnectionError{Address: m.creds.Address, Err: err}
	}
	m.mu.Unlock()

	s, err := m.dial(ctx, m.creds.Address, m.creds.Token)
	if err == nil && s == nil {
		err = errors.New("handshake returned no session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.fire(ctx, triggerFailed, err)
		return nil, &ConnectionError{Address: m.creds.Address, Err: err}
	}
	m.fire(ctx, triggerSucceeded, s)
	if m.session == nil {
		return nil, &ConnectionError{Address: m.creds.Address, Err: errors.New("session was not stored")}
	}
	return m.session, nil
}

// fire must be called with mu held.
func (m *Manager) fire(ctx context.Context, t trigger, args ...any) {
	if err := m.fsm.FireCtx(ctx, t, args...); err != nil {
		logger.L.Warn("session FSM fire error", "trigger", t, "error", err)
	}
}
