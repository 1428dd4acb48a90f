package session

import (
	"context"
	"errors"
	"sync"

	"iasctl/internal/tokencodec"
	"iasctl/internal/tokenstore"
	"iasctl/pkg/oauth"
)

// slotStorage is a single token slot in memory mirrored to one encrypted
// file. It ignores the storage key: a Manager has exactly one slot.
type slotStorage struct {
	file *tokencodec.File

	mu     sync.Mutex
	loaded bool
	token  *oauth.Token
}

var _ tokenstore.Storage = (*slotStorage)(nil)

func newSlotStorage(file *tokencodec.File) *slotStorage {
	return &slotStorage{file: file}
}

func (s *slotStorage) Load(ctx context.Context, _ tokenstore.Key) (*oauth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.token, nil
	}

	token, err := s.file.Load(ctx)
	switch {
	case errors.Is(err, tokencodec.ErrNotFound):
		s.token, s.loaded = nil, true
		return nil, nil
	case errors.Is(err, tokencodec.ErrCodec):
		// Unreadable means signed out until the next sign-in overwrites it.
		s.token, s.loaded = nil, true
		return nil, err
	case err != nil:
		return nil, err
	}

	s.token, s.loaded = token, true
	return token, nil
}

// Save updates memory first so a failed disk write still leaves the
// process with a usable token.
func (s *slotStorage) Save(ctx context.Context, _ tokenstore.Key, token *oauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.loaded = token, true
	return s.file.Save(ctx, token)
}

func (s *slotStorage) Delete(ctx context.Context, _ tokenstore.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Remove(ctx); err != nil {
		return err
	}
	s.token, s.loaded = nil, true
	return nil
}

// invalidate drops the in-memory copy so the next Load rereads the file.
func (s *slotStorage) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.loaded = nil, false
}
