package tokenstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"iasctl/internal/tokencodec"
	"iasctl/pkg/oauth"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRefresher struct {
	mu     sync.Mutex
	calls  int
	tokens []string
	token  *oauth.Token
	err    error
}

func (f *fakeRefresher) RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.tokens = append(f.tokens, refreshToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func (f *fakeRefresher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newReadyStore(t *testing.T, storage Storage, refresher Refresher, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(testingclock.NewFakePassiveClock(testNow))}, opts...)
	s := New(storage, refresher, opts...)
	require.NoError(t, s.Init("user-1", "session-1"))
	return s
}

func TestStore_RequiresInit(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStorage(), &fakeRefresher{})

	_, err := s.GetAccessToken(ctx)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, s.SaveTokens(ctx, &oauth.Token{AccessToken: "a"}), ErrInvalidOperation)
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, s.Clear(ctx), ErrInvalidOperation)

	require.NoError(t, s.Init("u", "s"))
	assert.ErrorIs(t, s.Init("u", "s"), ErrInvalidOperation)
}

func TestStore_SaveTokensValidates(t *testing.T) {
	s := newReadyStore(t, NewMemoryStorage(), &fakeRefresher{})
	err := s.SaveTokens(context.Background(), &oauth.Token{RefreshToken: "r"})
	assert.ErrorIs(t, err, oauth.ErrMissingAccessToken)
}

func TestStore_GetAccessToken(t *testing.T) {
	fresh := &oauth.Token{TokenType: "Bearer", AccessToken: "fresh", RefreshToken: "r2", ExpiresAt: testNow.Add(time.Hour)}

	tests := []struct {
		name          string
		stored        *oauth.Token
		skew          time.Duration
		refresher     *fakeRefresher
		expected      string
		expectedCalls int
		expectErr     bool
	}{
		{
			name:      "no record",
			refresher: &fakeRefresher{},
			expected:  "",
		},
		{
			name:      "no expiry is valid",
			stored:    &oauth.Token{AccessToken: "a"},
			refresher: &fakeRefresher{},
			expected:  "a",
		},
		{
			name:      "future expiry is valid",
			stored:    &oauth.Token{AccessToken: "a", ExpiresAt: testNow.Add(time.Second)},
			refresher: &fakeRefresher{},
			expected:  "a",
		},
		{
			name:      "expiry equal to now without refresh token is expired",
			stored:    &oauth.Token{AccessToken: "a", ExpiresAt: testNow},
			refresher: &fakeRefresher{},
			expected:  "",
		},
		{
			name:          "expiry equal to now with refresh token refreshes",
			stored:        &oauth.Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: testNow},
			refresher:     &fakeRefresher{token: fresh},
			expected:      "fresh",
			expectedCalls: 1,
		},
		{
			name:      "skew ignored without refresh token",
			stored:    &oauth.Token{AccessToken: "a", ExpiresAt: testNow.Add(10 * time.Second)},
			skew:      30 * time.Second,
			refresher: &fakeRefresher{},
			expected:  "a",
		},
		{
			name:          "skew applied with refresh token",
			stored:        &oauth.Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: testNow.Add(10 * time.Second)},
			skew:          30 * time.Second,
			refresher:     &fakeRefresher{token: fresh},
			expected:      "fresh",
			expectedCalls: 1,
		},
		{
			name:          "refresh failure",
			stored:        &oauth.Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: testNow.Add(-time.Minute)},
			refresher:     &fakeRefresher{err: errors.New("boom")},
			expected:      "",
			expectedCalls: 1,
			expectErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := NewMemoryStorage()
			s := newReadyStore(t, storage, tt.refresher, WithRefreshSkew(tt.skew))
			if tt.stored != nil {
				require.NoError(t, s.SaveTokens(ctx, tt.stored))
			}

			got, err := s.GetAccessToken(ctx)
			if tt.expectErr {
				assert.True(t, IsRefreshError(err), "expected RefreshError, got %v", err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expectedCalls, tt.refresher.Calls())
		})
	}
}

func TestStore_RefreshFailureKeepsStaleRecord(t *testing.T) {
	ctx := context.Background()
	stale := &oauth.Token{AccessToken: "stale", RefreshToken: "r", ExpiresAt: testNow.Add(-time.Minute)}
	refresher := &fakeRefresher{err: &oauth.ProtocolError{StatusCode: 400, Code: "invalid_grant"}}
	s := newReadyStore(t, NewMemoryStorage(), refresher)
	require.NoError(t, s.SaveTokens(ctx, stale))

	_, err := s.GetAccessToken(ctx)
	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	var perr *oauth.ProtocolError
	assert.ErrorAs(t, err, &perr)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, stale.Equal(got))

	// A later call retries.
	refresher.err = nil
	refresher.token = &oauth.Token{AccessToken: "new", ExpiresAt: testNow.Add(time.Hour)}
	token, err := s.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", token)
	assert.Equal(t, 2, refresher.Calls())
}

func TestStore_RefreshCarriesRefreshTokenForward(t *testing.T) {
	ctx := context.Background()
	refresher := &fakeRefresher{token: &oauth.Token{AccessToken: "new", ExpiresAt: testNow.Add(time.Hour)}}
	s := newReadyStore(t, NewMemoryStorage(), refresher)
	require.NoError(t, s.SaveTokens(ctx, &oauth.Token{AccessToken: "old", RefreshToken: "keep-me", ExpiresAt: testNow}))

	_, err := s.GetAccessToken(ctx)
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
	assert.Equal(t, "keep-me", got.RefreshToken)
	assert.Equal(t, []string{"keep-me"}, refresher.tokens)
}

func TestStore_RefreshCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	storage := NewMemoryStorage()
	refresher := &fakeRefresher{err: context.Canceled}
	s := newReadyStore(t, storage, refresher)
	require.NoError(t, s.SaveTokens(ctx, &oauth.Token{AccessToken: "old", RefreshToken: "r", ExpiresAt: testNow}))

	cancel()
	_, err := s.GetAccessToken(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsRefreshError(err))
}

type codecFailStorage struct{ MemoryStorage }

func (c *codecFailStorage) Load(ctx context.Context, key Key) (*oauth.Token, error) {
	return nil, tokencodec.ErrCodec
}

func TestStore_UnreadableRecordIsNoSession(t *testing.T) {
	s := newReadyStore(t, &codecFailStorage{}, &fakeRefresher{})

	token, err := s.GetAccessToken(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, token)

	record, err := s.Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := newReadyStore(t, NewMemoryStorage(), &fakeRefresher{})
	require.NoError(t, s.SaveTokens(ctx, &oauth.Token{AccessToken: "a"}))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	token, err := s.GetAccessToken(ctx)
	assert.NoError(t, err)
	assert.Empty(t, token)
}
