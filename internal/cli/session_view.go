package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how status output is rendered.
type OutputFormat string

const (
	// OutputFormatTable renders a human-readable table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON renders indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML renders YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	case "":
		return OutputFormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// SessionView is what "iasctl auth status" shows for one host.
type SessionView struct {
	Host            string     `json:"host" yaml:"host"`
	SignedIn        bool       `json:"signedIn" yaml:"signedIn"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	HasRefreshToken bool       `json:"hasRefreshToken" yaml:"hasRefreshToken"`
	TokenFile       string     `json:"tokenFile" yaml:"tokenFile"`
}

// State summarizes the session at now.
func (v SessionView) State(now time.Time) string {
	switch {
	case !v.SignedIn:
		return "Not signed in"
	case v.ExpiresAt == nil || v.ExpiresAt.After(now):
		return "Signed in"
	case v.HasRefreshToken:
		return "Expired (renewable)"
	default:
		return "Expired"
	}
}

// FormatExpiry describes expiresAt relative to now, e.g. "in 59m30s" or
// "expired 2m0s ago".
func FormatExpiry(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil || expiresAt.IsZero() {
		return "never"
	}
	d := expiresAt.Sub(now).Round(time.Second)
	if d > 0 {
		return "in " + d.String()
	}
	return "expired " + (-d).String() + " ago"
}

func colorState(state string) string {
	switch state {
	case "Signed in":
		return text.FgGreen.Sprint(state)
	case "Expired (renewable)":
		return text.FgYellow.Sprint(state)
	case "Expired":
		return text.FgRed.Sprint(state)
	default:
		return text.FgHiBlack.Sprint(state)
	}
}

// PrintSessionTable renders sessions as a table.
func PrintSessionTable(w io.Writer, sessions []SessionView, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("HOST"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("EXPIRES"),
		text.FgHiCyan.Sprint("REFRESH"),
		text.FgHiCyan.Sprint("TOKEN FILE"),
	})

	for _, s := range sessions {
		expires := "-"
		refresh := "-"
		if s.SignedIn {
			expires = FormatExpiry(s.ExpiresAt, now)
			refresh = "no"
			if s.HasRefreshToken {
				refresh = "yes"
			}
		}
		t.AppendRow(table.Row{
			s.Host,
			colorState(s.State(now)),
			expires,
			refresh,
			s.TokenFile,
		})
	}

	t.Render()
}

// WriteStructured renders v as JSON or YAML.
func WriteStructured(w io.Writer, format OutputFormat, v interface{}) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// RenderTemplate executes a Go template with the sprig function library,
// e.g. '{{ .Host }} {{ if .SignedIn }}{{ .ExpiresAt | date "15:04" }}{{ end }}'.
func RenderTemplate(w io.Writer, tmpl string, data interface{}) error {
	t, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("template execution failed: %w", err)
	}
	if !strings.HasSuffix(tmpl, "\n") {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
