// Package logging provides the subsystem-tagged structured logging used by
// iasctl.
//
// The package is a thin layer over log/slog. Every entry carries a subsystem
// attribute so log lines can be filtered by the component that produced them:
//
//   - **OAuth**: device authorization, polling and refresh requests
//   - **TokenCodec**: encryption and decryption of persisted tokens
//   - **TokenStore**: token policy decisions and storage strategies
//   - **Session**: sign-in, sign-out and token file handling
//   - **Transport**: bearer token attachment on outgoing API requests
//   - **Config**: configuration loading
//
// # Usage
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Debug("Session", "Loaded token file %s", path)
//	logging.Warn("Transport", "Sending request unauthenticated: %v", err)
//	logging.Error("OAuth", err, "Refresh request failed")
//
// # Audit Logging
//
// Security-relevant events are emitted with Audit:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "token_refresh",
//	    Outcome: "success",
//	    Target:  "appstore.intelligentplant.com",
//	})
//
// Audit events are logged at INFO level with an [AUDIT] prefix. Token values
// must never be passed to any logging function; use strings.RedactToken from
// iasctl/pkg/strings when a preview is needed.
package logging
