// Package tokenstore implements the policy that decides whether a stored
// access token can be used, must be refreshed, or is gone.
//
// The policy lives in Store and is the same for every backing store. Where
// the token set physically lives is a Storage strategy:
//
//   - MemoryStorage keeps token sets in process memory.
//   - FileStorage keeps one encrypted file per key in a directory.
//   - CookieStorage keeps the encrypted token set in an HTTP cookie bound to
//     a single request/response pair.
//   - RedisStorage keeps encrypted token sets in Redis, optionally with a TTL.
//
// Decision table used by Store.GetAccessToken:
//
//	no record / empty access token         -> "", nil
//	no expiry, or expiry > now (+skew)     -> stored access token
//	expired, no refresh token              -> "", nil (no network call)
//	expired, refresh token                 -> refresh, save, new access token
//	refresh failed                         -> "", *RefreshError (record kept)
//
// The skew only applies when a refresh token is present: a token that cannot
// be renewed is used until its real expiry.
package tokenstore
