package tokencodec

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"iasctl/pkg/oauth"
)

const (
	// MinSecretSize is the minimum length of the root secret.
	MinSecretSize = 32

	// envelopeVersion prefixes every protected blob.
	envelopeVersion byte = 0x01

	keyInfoPrefix = "iasctl.tokens.v1"
)

// ErrCodec is returned when a blob cannot be produced or read back. Tampered,
// truncated and wrong-purpose blobs all match it.
var ErrCodec = errors.New("token codec failure")

// Codec encrypts and authenticates token sets for one purpose.
type Codec struct {
	secret   []byte
	purposes []string
	aead     cipher.AEAD
	aad      []byte
}

// NewCodec derives a purpose-bound codec from secret.
func NewCodec(secret []byte, purposes ...string) (*Codec, error) {
	if len(secret) < MinSecretSize {
		return nil, fmt.Errorf("%w: secret must be at least %d bytes", ErrCodec, MinSecretSize)
	}

	purpose := strings.Join(purposes, "\x00")
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, secret, nil, []byte(keyInfoPrefix+"\x00"+purpose))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", ErrCodec, err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	return &Codec{
		secret:   secret,
		purposes: append([]string(nil), purposes...),
		aead:     aead,
		aad:      []byte(purpose),
	}, nil
}

// WithPurpose returns a child codec for a narrower purpose.
func (c *Codec) WithPurpose(sub ...string) *Codec {
	purposes := append(append([]string(nil), c.purposes...), sub...)
	child, err := NewCodec(c.secret, purposes...)
	if err != nil {
		// The secret was accepted when c was built.
		panic(err)
	}
	return child
}

// Purpose returns the purpose chain the codec is bound to.
func (c *Codec) Purpose() []string {
	return append([]string(nil), c.purposes...)
}

// Protect serializes and seals a token set.
func (c *Codec) Protect(token *oauth.Token) ([]byte, error) {
	if err := token.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	plaintext, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrCodec, err)
	}

	out := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(plaintext)+c.aead.Overhead())
	out[0] = envelopeVersion
	if _, err := rand.Read(out[1:]); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrCodec, err)
	}

	return c.aead.Seal(out, out[1:], plaintext, c.aad), nil
}

// Unprotect opens a blob produced by Protect under the same purpose.
func (c *Codec) Unprotect(blob []byte) (*oauth.Token, error) {
	headerSize := 1 + chacha20poly1305.NonceSizeX
	if len(blob) < headerSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: blob too short", ErrCodec)
	}
	if blob[0] != envelopeVersion {
		return nil, fmt.Errorf("%w: unknown envelope version %d", ErrCodec, blob[0])
	}

	plaintext, err := c.aead.Open(nil, blob[1:headerSize], blob[headerSize:], c.aad)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrCodec)
	}

	var token oauth.Token
	if err := json.Unmarshal(plaintext, &token); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrCodec, err)
	}
	if err := token.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	return &token, nil
}
