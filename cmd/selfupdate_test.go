package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunSelfUpdateRefusesDevelopmentBuilds(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	for _, version := range []string{"", "dev"} {
		t.Run("version="+version, func(t *testing.T) {
			rootCmd.Version = version

			c := newSelfUpdateCmd()
			var buf bytes.Buffer
			c.SetOut(&buf)
			c.SetContext(context.Background())

			err := runSelfUpdate(c, nil)
			if err == nil {
				t.Fatal("expected an error for a development version")
			}
			if !strings.Contains(err.Error(), "cannot self-update a development version") {
				t.Errorf("unexpected error: %v", err)
			}
			if buf.Len() != 0 {
				t.Errorf("nothing should be printed, got %q", buf.String())
			}
		})
	}
}

func TestSelfUpdateCommandHelp(t *testing.T) {
	c := newSelfUpdateCmd()
	var buf bytes.Buffer
	c.SetOut(&buf)
	c.SetErr(&buf)
	c.SetArgs([]string{"--help"})

	if err := c.Execute(); err != nil {
		t.Fatalf("Error executing self-update help: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Checks for the latest release of iasctl") {
		t.Errorf("Help output should contain long description. Got: %q", output)
	}
	if !strings.Contains(output, "--check") {
		t.Errorf("Help output should list --check. Got: %q", output)
	}
}
