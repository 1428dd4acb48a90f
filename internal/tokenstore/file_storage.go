package tokenstore

import (
	"context"
	"errors"
	"path/filepath"

	"iasctl/internal/tokencodec"
	"iasctl/pkg/oauth"
)

// FileStorage keeps one encrypted token file per key in a directory. File
// names are key hashes and each file is sealed for its own key.
type FileStorage struct {
	dir   string
	codec *tokencodec.Codec
}

// NewFileStorage creates a FileStorage rooted at dir.
func NewFileStorage(dir string, codec *tokencodec.Codec) *FileStorage {
	return &FileStorage{dir: dir, codec: codec}
}

func (f *FileStorage) file(key Key) *tokencodec.File {
	return tokencodec.NewFile(filepath.Join(f.dir, key.Hash()), f.codec.WithPurpose(key.purpose()...))
}

// Load implements Storage.
func (f *FileStorage) Load(ctx context.Context, key Key) (*oauth.Token, error) {
	token, err := f.file(key).Load(ctx)
	if errors.Is(err, tokencodec.ErrNotFound) {
		return nil, nil
	}
	return token, err
}

// Save implements Storage.
func (f *FileStorage) Save(ctx context.Context, key Key, token *oauth.Token) error {
	return f.file(key).Save(ctx, token)
}

// Delete implements Storage.
func (f *FileStorage) Delete(ctx context.Context, key Key) error {
	return f.file(key).Remove(ctx)
}
