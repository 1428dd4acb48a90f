// Package oauth implements the client side of the Industrial App Store OAuth
// endpoints used by iasctl.
//
// # Core Components
//
//   - Token: an immutable token set (access token, refresh token, type,
//     absolute expiry) with expiry checks that take an explicit clock reading
//   - Client: device authorization (RFC 8628), device code polling and
//     refresh token exchange against a configured token endpoint
//   - ProtocolError: classified non-success responses; device flow error codes
//     match the ErrAuthorizationPending, ErrSlowDown, ErrAccessDenied and
//     ErrExpiredToken sentinels through errors.Is
//   - BearerChallenge: parsed WWW-Authenticate headers of protected APIs
//
// # Usage
//
//	client := oauth.NewClient(oauth.Config{
//	    DeviceAuthorizationURL: "https://appstore.example.com/AuthorizationServer/OAuth/DeviceAuthorization",
//	    TokenURL:               "https://appstore.example.com/AuthorizationServer/OAuth/Token",
//	    ClientID:               "my-client",
//	    Scopes:                 []string{"DataRead"},
//	})
//
//	auth, err := client.StartDeviceAuthorization(ctx)
//	token, err := client.PollDeviceToken(ctx, auth.DeviceCode)
//	if oauth.IsPending(err) {
//	    // wait auth.Interval and poll again
//	}
//
// Expiry instants are computed from expires_in using the clock passed with
// WithClock, so tests can control time with a fake clock.
package oauth
