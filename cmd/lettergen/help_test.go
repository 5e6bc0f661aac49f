package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command  string
		wantCode int
		want     string
	}{
		{"generate", ExitSuccess, "Exit codes:"},
		{"serve", ExitSuccess, "--max-upload-mb"},
		{"doctor", ExitSuccess, "--json"},
		{"version", ExitSuccess, "lettergen version"},
		{"help", ExitSuccess, "help [command]"},
		{"bogus", ExitUsage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()
			env, stdout, stderr := testEnv(nil)

			if code := runHelp([]string{tt.command}, env); code != tt.wantCode {
				t.Errorf("runHelp(%q) = %d, want %d", tt.command, code, tt.wantCode)
			}
			if tt.want != "" && !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("stdout = %q, want to contain %q", stdout, tt.want)
			}
			if tt.wantCode == ExitUsage && !strings.Contains(stderr.String(), "unknown command: bogus") {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}
}

func TestUsage_ListsEnvironment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printGenerateUsage(&buf)
	for name := range knownEnvVars {
		if name == "LETTERGEN_CONTAINER" {
			continue
		}
		if !strings.Contains(buf.String(), name) {
			t.Errorf("generate usage does not mention %s", name)
		}
	}
}
