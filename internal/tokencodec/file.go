package tokencodec

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"iasctl/pkg/logging"
	"iasctl/pkg/oauth"
)

// TokensDirName is the directory under the app data directory that holds
// one protected token file per host.
const TokensDirName = ".tokens"

// ErrNotFound is returned by File.Load when no token file exists.
var ErrNotFound = errors.New("token file not found")

// HostFileName returns the file name used for host: the lowercase hex
// SHA-256 of the host name.
func HostFileName(host string) string {
	sum := sha256.Sum256([]byte(host))
	return hex.EncodeToString(sum[:])
}

// HostFilePath returns the token file path for host under appDataDir.
func HostFilePath(appDataDir, host string) string {
	return filepath.Join(appDataDir, TokensDirName, HostFileName(host))
}

// File is a single protected token set on disk.
type File struct {
	path  string
	codec *Codec
}

// NewFile returns a File at path sealed with codec.
func NewFile(path string, codec *Codec) *File {
	return &File{path: path, codec: codec}
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load reads and opens the token file. A missing file yields ErrNotFound;
// a file that cannot be opened yields an error matching ErrCodec.
func (f *File) Load(ctx context.Context) (*oauth.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 -- path is derived from a hash, not user input
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	return f.codec.Unprotect(data)
}

// Save seals token and replaces the file atomically.
func (f *File) Save(ctx context.Context, token *oauth.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	blob, err := f.codec.Protect(token)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(f.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict token file: %w", err)
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	logging.Audit(logging.AuditEvent{
		Action:  "token_file_written",
		Outcome: "success",
		Target:  f.path,
	})
	return nil
}

// Remove deletes the token file. Removing a missing file is not an error.
func (f *File) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete token file: %w", err)
	}

	logging.Audit(logging.AuditEvent{
		Action:  "token_file_deleted",
		Outcome: "success",
		Target:  f.path,
	})
	return nil
}
