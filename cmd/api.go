package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"iasctl/internal/cli"
	"iasctl/internal/transport"
	"iasctl/pkg/oauth"
	pkgstrings "iasctl/pkg/strings"

	"github.com/spf13/cobra"
)

var apiRaw bool

// apiCmd represents the api command group
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Call Industrial App Store APIs with the stored session",
}

// apiGetCmd represents the api get command
var apiGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Send an authenticated GET request to the Data Core API",
	Long: `Send a GET request to the Data Core API and print the response body.

The path is resolved against dataCore.url; an absolute URL is used as is.
The stored access token is attached and renewed when needed. If renewal
fails the request is sent without a token and the server decides.

Examples:
  iasctl api get api/data/datasources
  iasctl api get api/data/datasources --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runAPIGet,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.AddCommand(apiGetCmd)
	apiGetCmd.Flags().BoolVar(&apiRaw, "raw", false, "Print the body exactly as received")
}

func runAPIGet(cmd *cobra.Command, args []string) error {
	cfg, mgr, err := setupSession()
	if err != nil {
		return err
	}

	client := transport.NewClient(&http.Client{Timeout: cfg.Session.HTTPTimeout}, mgr)

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, cfg.DataCore.EndpointURL(args[0]), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return unauthorizedError(mgr.Host(), resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s returned %s: %s", req.URL.Redacted(), resp.Status, pkgstrings.Truncate(string(body), pkgstrings.DefaultBodyPreviewLen))
	}

	out := cmd.OutOrStdout()
	if !apiRaw && isJSON(resp) {
		var indented bytes.Buffer
		if err := json.Indent(&indented, body, "", "  "); err == nil {
			indented.WriteByte('\n')
			_, err = indented.WriteTo(out)
			return err
		}
	}
	_, err = out.Write(body)
	return err
}

// unauthorizedError turns a 401 into the CLI error for the exit code: a
// rejected token means the session is no longer valid, a bare challenge
// means no token was sent.
func unauthorizedError(host string, resp *http.Response) error {
	challenge := oauth.ChallengeFromResponse(resp)
	if challenge.InvalidToken() {
		reason := challenge.ErrorDescription
		if reason == "" {
			reason = challenge.Error
		}
		return &cli.AuthFailedError{Host: host, Reason: fmt.Errorf("access token rejected: %s", reason)}
	}
	return &cli.AuthRequiredError{Host: host}
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "json")
}
