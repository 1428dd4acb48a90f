package tokencodec

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"iasctl/pkg/logging"
)

const (
	keysDirName = ".keys"
	keyFileName = "tokens.key"
	keySize     = 32
)

// KeyPath returns where the root secret for appDataDir lives.
func KeyPath(appDataDir string) string {
	return filepath.Join(appDataDir, keysDirName, keyFileName)
}

// LoadOrCreateKey reads the root secret from appDataDir, generating and
// persisting a new random one on first use.
//
// SECURITY: the key directory is created 0700 and the key file 0600.
func LoadOrCreateKey(appDataDir string) ([]byte, error) {
	path := KeyPath(appDataDir)

	// #nosec G304 -- path is derived from the configured app data directory
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) < MinSecretSize {
			return nil, fmt.Errorf("key file %s is too short (%d bytes)", path, len(data))
		}
		return data, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	// O_EXCL: if another process created the key concurrently, use theirs.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return LoadOrCreateKey(appDataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close key file: %w", err)
	}

	logging.Audit(logging.AuditEvent{
		Action:  "token_key_created",
		Outcome: "success",
		Target:  path,
	})
	return key, nil
}
