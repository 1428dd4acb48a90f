package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"iasctl/pkg/oauth"
)

// Key identifies one stored token set.
type Key struct {
	UserID    string
	SessionID string
}

// Hash returns a filesystem and cache safe identifier for the key that does
// not reveal the user id.
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(k.UserID + "\x00" + k.SessionID))
	return hex.EncodeToString(sum[:])
}

// purpose returns the codec purpose chain for k.
func (k Key) purpose() []string {
	return []string{"user:" + k.UserID, "session:" + k.SessionID}
}

// Storage persists whole token sets. Load returns (nil, nil) when nothing is
// stored. Implementations that encrypt return errors matching
// tokencodec.ErrCodec for unreadable blobs.
type Storage interface {
	Load(ctx context.Context, key Key) (*oauth.Token, error)
	Save(ctx context.Context, key Key, token *oauth.Token) error
	Delete(ctx context.Context, key Key) error
}

// MemoryStorage keeps token sets in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	tokens map[Key]oauth.Token
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{tokens: make(map[Key]oauth.Token)}
}

// Load returns a copy of the stored token set.
func (m *MemoryStorage) Load(ctx context.Context, key Key) (*oauth.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[key]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// Save replaces the token set for key.
func (m *MemoryStorage) Save(ctx context.Context, key Key, token *oauth.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[key] = *token
	return nil
}

// Delete forgets the token set for key.
func (m *MemoryStorage) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, key)
	return nil
}
