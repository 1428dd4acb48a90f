// Package session owns the signed-in state of a single-user CLI process
// against one Industrial App Store host.
//
// A Manager keeps at most one token set in memory, mirrored to an encrypted
// file under the app data directory. Every operation that reads the slot
// and may then write it (GetAccessToken, SignIn, SignOut, GetSessionInfo)
// runs under one context-aware lock, so concurrent callers never trigger
// two refreshes or two device flows at once.
//
// Sign-in uses the OAuth 2.0 device authorization grant (RFC 8628):
//
//	mgr, err := session.New(session.Config{
//		Host:       "appstore.intelligentplant.com",
//		AppDataDir: dir,
//		Codec:      codec,
//		Client:     oauthClient,
//	})
//	created, err := mgr.SignIn(ctx, func(ctx context.Context, p oauth.PendingDeviceAuthorization) error {
//		fmt.Printf("Visit %s and enter %s\n", p.VerificationURI, p.UserCode)
//		return nil
//	}, false)
//
// The callback runs exactly once per device flow, before the first poll.
package session
