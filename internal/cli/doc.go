// Package cli holds the presentation helpers shared by iasctl commands:
// the user-facing authentication errors that map to exit codes, session
// status rendering (table, JSON, YAML or a custom template), the progress
// spinner shown while waiting for device approval, and the claim table of
// "iasctl auth whoami".
//
// Nothing here talks to the network or touches token storage; commands
// collect a SessionView from the session manager and hand it over.
package cli
