package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"k8s.io/utils/clock"

	"iasctl/internal/tokencodec"
	"iasctl/internal/tokenstore"
	"iasctl/pkg/logging"
	"iasctl/pkg/oauth"
)

const subsystem = "Session"

const (
	// DefaultRefreshSkew is how long before expiry a renewable access token
	// is treated as expired.
	DefaultRefreshSkew = 30 * time.Second

	// DefaultPollInterval is used when the server does not specify one.
	DefaultPollInterval = 5 * time.Second

	// slowDownIncrement is added to the polling interval on slow_down
	// (RFC 8628 section 3.5).
	slowDownIncrement = 5 * time.Second

	// cliSessionID is the session id of the single CLI slot.
	cliSessionID = "cli"
)

// DeviceClient is the OAuth endpoint client a Manager talks to.
// *oauth.Client satisfies it.
type DeviceClient interface {
	StartDeviceAuthorization(ctx context.Context) (*oauth.DeviceAuthorization, error)
	PollDeviceToken(ctx context.Context, deviceCode string) (*oauth.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// DeviceAuthorizationCallback is invoked once per device flow so the caller
// can show the verification URI and user code. Returning an error aborts
// the sign-in.
type DeviceAuthorizationCallback func(ctx context.Context, pending oauth.PendingDeviceAuthorization) error

// Config configures a Manager.
type Config struct {
	// Host is the Industrial App Store host name. It selects the token file.
	Host string

	// AppDataDir is the directory holding the .tokens directory.
	AppDataDir string

	// Codec seals the token file. It is narrowed to the host internally.
	Codec *tokencodec.Codec

	// Client talks to the OAuth endpoints.
	Client DeviceClient

	// Clock defaults to the real clock.
	Clock clock.Clock

	// RefreshSkew defaults to DefaultRefreshSkew.
	RefreshSkew time.Duration

	// DefaultPollInterval defaults to DefaultPollInterval.
	DefaultPollInterval time.Duration
}

// Info is a read-only view of the stored session. It is computed from the
// raw record and never triggers a refresh.
type Info struct {
	ExpiresAt       time.Time
	HasRefreshToken bool
}

// Manager coordinates sign-in, sign-out and token access for one host.
type Manager struct {
	host         string
	client       DeviceClient
	clock        clock.Clock
	pollInterval time.Duration

	file  *tokencodec.File
	slot  *slotStorage
	store *tokenstore.Store

	// sem is a context-aware mutex around every slot operation.
	sem *semaphore.Weighted
}

// New creates a Manager. Nothing is read from disk until first use.
func New(cfg Config) (*Manager, error) {
	if cfg.Host == "" {
		return nil, errors.New("session: host is required")
	}
	if cfg.AppDataDir == "" {
		return nil, errors.New("session: app data directory is required")
	}
	if cfg.Codec == nil {
		return nil, errors.New("session: codec is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("session: OAuth client is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.RefreshSkew == 0 {
		cfg.RefreshSkew = DefaultRefreshSkew
	}
	if cfg.DefaultPollInterval <= 0 {
		cfg.DefaultPollInterval = DefaultPollInterval
	}

	file := tokencodec.NewFile(
		tokencodec.HostFilePath(cfg.AppDataDir, cfg.Host),
		cfg.Codec.WithPurpose("session", cfg.Host),
	)
	slot := newSlotStorage(file)
	store := tokenstore.New(slot, cfg.Client,
		tokenstore.WithClock(cfg.Clock),
		tokenstore.WithRefreshSkew(cfg.RefreshSkew),
	)
	if err := store.Init(cfg.Host, cliSessionID); err != nil {
		return nil, err
	}

	return &Manager{
		host:         cfg.Host,
		client:       cfg.Client,
		clock:        cfg.Clock,
		pollInterval: cfg.DefaultPollInterval,
		file:         file,
		slot:         slot,
		store:        store,
		sem:          semaphore.NewWeighted(1),
	}, nil
}

// Host returns the host the Manager signs in to.
func (m *Manager) Host() string {
	return m.host
}

// TokenFilePath returns where the encrypted token set is stored.
func (m *Manager) TokenFilePath() string {
	return m.file.Path()
}

func (m *Manager) lock(ctx context.Context) error {
	return m.sem.Acquire(ctx, 1)
}

func (m *Manager) unlock() {
	m.sem.Release(1)
}

// GetAccessToken returns a usable access token, refreshing it when needed.
// It returns "" with a nil error when there is no session, and "" with a
// *tokenstore.RefreshError when renewal failed.
func (m *Manager) GetAccessToken(ctx context.Context) (string, error) {
	if err := m.lock(ctx); err != nil {
		return "", err
	}
	defer m.unlock()

	return m.store.GetAccessToken(ctx)
}

// GetBearerToken returns the token to put in an Authorization header.
func (m *Manager) GetBearerToken(ctx context.Context) (string, error) {
	return m.GetAccessToken(ctx)
}

// SignIn ensures there is a session. Unless forceNewSession is set, a
// usable existing token is reused and SignIn returns false without
// contacting the device authorization endpoint. Otherwise it runs the device
// flow, invoking onCreated exactly once before polling, and returns true
// once a new token set has been stored.
//
// On denial, timeout, protocol error or cancellation the previous session
// is left as it was.
func (m *Manager) SignIn(ctx context.Context, onCreated DeviceAuthorizationCallback, forceNewSession bool) (bool, error) {
	if err := m.lock(ctx); err != nil {
		return false, err
	}
	defer m.unlock()

	if !forceNewSession {
		token, err := m.store.GetAccessToken(ctx)
		switch {
		case err == nil && token != "":
			logging.Debug(subsystem, "Reusing existing session for %s", m.host)
			return false, nil
		case tokenstore.IsRefreshError(err):
			logging.Warn(subsystem, "Existing session for %s could not be renewed, starting a new one: %v", m.host, err)
		case err != nil:
			return false, err
		}
	}

	attemptID := uuid.NewString()
	logging.Audit(logging.AuditEvent{
		Action:    "sign_in",
		Outcome:   "started",
		Target:    m.host,
		AttemptID: attemptID,
	})

	token, err := m.runDeviceFlow(ctx, onCreated)
	if err != nil {
		logging.Audit(logging.AuditEvent{
			Action:    "sign_in",
			Outcome:   signInOutcome(err),
			Target:    m.host,
			AttemptID: attemptID,
			Reason:    err.Error(),
		})
		return false, err
	}

	// The user approved; persist even if the caller has since gone away.
	if err := m.store.SaveTokens(context.WithoutCancel(ctx), token); err != nil {
		return false, fmt.Errorf("failed to store new session: %w", err)
	}

	logging.Audit(logging.AuditEvent{
		Action:    "sign_in",
		Outcome:   "success",
		Target:    m.host,
		AttemptID: attemptID,
	})
	return true, nil
}

// runDeviceFlow starts a device authorization and polls until it resolves.
func (m *Manager) runDeviceFlow(ctx context.Context, onCreated DeviceAuthorizationCallback) (*oauth.Token, error) {
	auth, err := m.client.StartDeviceAuthorization(ctx)
	if err != nil {
		return nil, err
	}

	if onCreated != nil {
		if err := onCreated(ctx, auth.Pending); err != nil {
			return nil, err
		}
	}

	interval := auth.Interval
	if interval <= 0 {
		interval = m.pollInterval
	}
	expiresAt := auth.Pending.ExpiresAt

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !expiresAt.IsZero() && !m.clock.Now().Before(expiresAt) {
			return nil, &AuthorizationTimeoutError{Pending: auth.Pending}
		}

		token, err := m.client.PollDeviceToken(ctx, auth.DeviceCode)
		switch {
		case err == nil:
			logging.Debug(subsystem, "Device authorization approved after %d poll(s)", attempt)
			return token, nil
		case errors.Is(err, oauth.ErrSlowDown):
			interval += slowDownIncrement
			logging.Debug(subsystem, "Server asked to slow down, polling every %s", interval)
		case errors.Is(err, oauth.ErrAuthorizationPending):
		case errors.Is(err, oauth.ErrAccessDenied):
			return nil, &AuthorizationDeniedError{Pending: auth.Pending, Err: err}
		case errors.Is(err, oauth.ErrExpiredToken):
			return nil, &AuthorizationTimeoutError{Pending: auth.Pending, Err: err}
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.clock.After(interval):
		}
	}
}

func signInOutcome(err error) string {
	var denied *AuthorizationDeniedError
	var timeout *AuthorizationTimeoutError
	switch {
	case errors.As(err, &denied):
		return "denied"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "failure"
	}
}

// SignOut deletes the stored session. Signing out without a session is a
// no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	logging.Audit(logging.AuditEvent{
		Action:  "sign_out",
		Outcome: "success",
		Target:  m.host,
	})
	return nil
}

// GetSessionInfo describes the stored session without refreshing it. It
// returns nil when there is no session.
func (m *Manager) GetSessionInfo(ctx context.Context) (*Info, error) {
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.unlock()

	token, err := m.store.Load(ctx)
	if err != nil || token == nil {
		return nil, err
	}
	return &Info{
		ExpiresAt:       token.ExpiresAt,
		HasRefreshToken: token.HasRefreshToken(),
	}, nil
}

// CurrentToken returns the stored token set without refreshing it. It is
// meant for diagnostics such as displaying token claims.
func (m *Manager) CurrentToken(ctx context.Context) (*oauth.Token, error) {
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.unlock()

	return m.store.Load(ctx)
}
