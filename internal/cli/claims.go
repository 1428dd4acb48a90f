package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// timeClaims hold seconds since the epoch.
var timeClaims = map[string]bool{
	"exp":       true,
	"iat":       true,
	"nbf":       true,
	"auth_time": true,
}

// DecodeClaims reads the claims of a JWT access token without verifying
// its signature. The second result is false for opaque tokens.
func DecodeClaims(accessToken string) (map[string]interface{}, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// FormatClaim renders a claim value for display.
func FormatClaim(name string, value interface{}) string {
	switch v := value.(type) {
	case float64:
		if timeClaims[name] {
			return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
		}
		return fmt.Sprintf("%v", v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// PrintClaimsTable renders claims sorted by name.
func PrintClaimsTable(w io.Writer, claims map[string]interface{}) {
	names := make([]string, 0, len(claims))
	for name := range claims {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("CLAIM"),
		text.FgHiCyan.Sprint("VALUE"),
	})
	for _, name := range names {
		t.AppendRow(table.Row{name, FormatClaim(name, claims[name])})
	}
	t.Render()
}
