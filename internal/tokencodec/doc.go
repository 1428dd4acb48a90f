// Package tokencodec protects OAuth token sets at rest.
//
// A Codec turns an oauth.Token into an opaque, authenticated blob and back.
// Every Codec is bound to a purpose: a blob produced under one purpose
// cannot be read under another, so a token file copied into a cookie or a
// Redis key for a different session is rejected rather than accepted.
//
// The package also owns the on-disk layout used by the CLI:
//
//	<appdata>/.keys/tokens.key             32 random bytes, 0600
//	<appdata>/.tokens/<sha256hex(host)>    one protected token set per host
//
// SECURITY: token values never leave this package in clear text except as
// the return value of Unprotect. Failures are reported as ErrCodec without
// details of the blob.
package tokencodec
