package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"iasctl/internal/tokencodec"
	"iasctl/pkg/logging"
	"iasctl/pkg/oauth"
)

const subsystem = "TokenStore"

// Refresher exchanges a refresh token for a new token set.
// *oauth.Client satisfies it.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for expiry decisions.
func WithClock(clk clock.PassiveClock) Option {
	return func(s *Store) {
		s.clock = clk
	}
}

// WithRefreshSkew treats renewable tokens as expired skew before their real
// expiry. Tokens without a refresh token are unaffected.
func WithRefreshSkew(skew time.Duration) Option {
	return func(s *Store) {
		s.skew = skew
	}
}

// Store applies the token lifecycle policy over a Storage.
type Store struct {
	storage   Storage
	refresher Refresher
	clock     clock.PassiveClock
	skew      time.Duration

	// mu serializes load-decide-refresh-save so one Store never runs two
	// refreshes at once.
	mu    sync.Mutex
	key   Key
	ready bool
}

// New creates a Store. The Store must be initialised with Init before use.
func New(storage Storage, refresher Refresher, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		refresher: refresher,
		clock:     clock.RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init binds the Store to a user and session. It may be called once.
func (s *Store) Init(userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return fmt.Errorf("%w: store already initialised", ErrInvalidOperation)
	}
	s.key = Key{UserID: userID, SessionID: sessionID}
	s.ready = true
	return nil
}

// GetAccessToken returns a usable access token, refreshing it when it has
// expired and a refresh token is available. It returns "" with a nil error
// when there is no usable token, and "" with a *RefreshError when a refresh
// was attempted and failed.
func (s *Store) GetAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return "", fmt.Errorf("%w: GetAccessToken before Init", ErrInvalidOperation)
	}

	current, err := s.loadLocked(ctx)
	if err != nil {
		return "", err
	}
	if current == nil || current.AccessToken == "" {
		return "", nil
	}

	now := s.clock.Now()
	if !current.HasRefreshToken() {
		if current.NeedsRefresh(now, 0) {
			logging.Debug(subsystem, "Access token expired at %s and cannot be renewed", current.ExpiresAt.Format(time.RFC3339))
			return "", nil
		}
		return current.AccessToken, nil
	}

	if !current.NeedsRefresh(now, s.skew) {
		return current.AccessToken, nil
	}

	refreshed, err := s.refreshLocked(ctx, current)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// SaveTokens replaces the stored token set.
func (s *Store) SaveTokens(ctx context.Context, token *oauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return fmt.Errorf("%w: SaveTokens before Init", ErrInvalidOperation)
	}
	if err := token.Validate(); err != nil {
		return err
	}
	return s.storage.Save(ctx, s.key, token)
}

// Load returns the stored token set as-is, without refreshing. It returns
// (nil, nil) when there is none or it cannot be read.
func (s *Store) Load(ctx context.Context) (*oauth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, fmt.Errorf("%w: Load before Init", ErrInvalidOperation)
	}
	return s.loadLocked(ctx)
}

// Clear deletes the stored token set. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return fmt.Errorf("%w: Clear before Init", ErrInvalidOperation)
	}
	return s.storage.Delete(ctx, s.key)
}

// loadLocked reads the record. Unreadable blobs are treated as "no record".
func (s *Store) loadLocked(ctx context.Context) (*oauth.Token, error) {
	token, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, tokencodec.ErrCodec) {
		logging.Warn(subsystem, "Stored token set is unreadable, treating as signed out: %v", err)
		logging.Audit(logging.AuditEvent{
			Action:  "token_load",
			Outcome: "failure",
			Target:  s.key.Hash(),
			Reason:  "codec",
		})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token set: %w", err)
	}
	return token, nil
}

// refreshLocked exchanges the refresh token of current and stores the result.
// On failure current is left in storage untouched.
func (s *Store) refreshLocked(ctx context.Context, current *oauth.Token) (*oauth.Token, error) {
	logging.Debug(subsystem, "Access token expires at %s, refreshing", current.ExpiresAt.Format(time.RFC3339))

	refreshed, err := s.refresher.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.Audit(logging.AuditEvent{
			Action:  "token_refresh",
			Outcome: "failure",
			Target:  s.key.Hash(),
			Reason:  err.Error(),
		})
		return nil, &RefreshError{Err: err}
	}
	if err := refreshed.Validate(); err != nil {
		return nil, &RefreshError{Err: err}
	}

	// Servers that do not rotate refresh tokens omit them from the response.
	if !refreshed.HasRefreshToken() {
		next := *refreshed
		next.RefreshToken = current.RefreshToken
		refreshed = &next
	}

	if err := s.storage.Save(ctx, s.key, refreshed); err != nil {
		logging.Error(subsystem, err, "Failed to persist refreshed token set")
	}

	logging.Audit(logging.AuditEvent{
		Action:  "token_refresh",
		Outcome: "success",
		Target:  s.key.Hash(),
	})
	return refreshed, nil
}
