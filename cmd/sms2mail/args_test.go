package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validArgv() []string {
	return []string{
		"-server", "smtp.example.org",
		"-user", "gateway",
		"-password", "secret",
		"-from", "gateway@example.org",
	}
}

func TestParseArgumentsDefaults(t *testing.T) {
	arguments, err := parseArguments(validArgv())
	if err != nil {
		t.Fatalf("parseArguments: %v", err)
	}

	if arguments.ConfigPath != "etc/config.yml" {
		t.Errorf("ConfigPath = %q, want default", arguments.ConfigPath)
	}
	if arguments.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", arguments.SMTPPort)
	}
	if arguments.SMTPServer != "smtp.example.org" || arguments.SMTPUser != "gateway" {
		t.Errorf("server/user = %q/%q", arguments.SMTPServer, arguments.SMTPUser)
	}
	if arguments.SMTPPassword != "secret" {
		t.Errorf("SMTPPassword = %q", arguments.SMTPPassword)
	}
}

func TestParseArgumentsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name        string
		argv        []string
		wantMessage string
	}{
		{
			name:        "missing server",
			argv:        []string{"-user", "gateway", "-password", "secret", "-from", "gateway@example.org"},
			wantMessage: "-server",
		},
		{
			name:        "missing user",
			argv:        []string{"-server", "smtp.example.org", "-password", "secret", "-from", "gateway@example.org"},
			wantMessage: "-user",
		},
		{
			name:        "port zero",
			argv:        append(validArgv(), "-port", "0"),
			wantMessage: "-port",
		},
		{
			name:        "port out of range",
			argv:        append(validArgv(), "-port", "65536"),
			wantMessage: "-port",
		},
		{
			name:        "missing password",
			argv:        []string{"-server", "smtp.example.org", "-user", "gateway", "-from", "gateway@example.org"},
			wantMessage: "-password",
		},
		{
			name:        "password and password file together",
			argv:        append(validArgv(), "-password-file", "/tmp/never-read"),
			wantMessage: "二选一",
		},
		{
			name:        "from without at sign",
			argv:        []string{"-server", "smtp.example.org", "-user", "gateway", "-password", "secret", "-from", "gateway"},
			wantMessage: "-from",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseArguments(test.argv)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.wantMessage) {
				t.Errorf("error = %q, want mention of %q", err, test.wantMessage)
			}
		})
	}
}

func TestParseArgumentsPasswordFile(t *testing.T) {
	passwordPath := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(passwordPath, []byte("  file-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	argv := []string{
		"-server", "smtp.example.org",
		"-user", "gateway",
		"-password-file", passwordPath,
		"-from", "gateway@example.org",
	}
	arguments, err := parseArguments(argv)
	if err != nil {
		t.Fatalf("parseArguments: %v", err)
	}

	if arguments.SMTPPassword != "file-secret" {
		t.Errorf("SMTPPassword = %q, want trimmed file content", arguments.SMTPPassword)
	}
}

func TestParseArgumentsEmptyPasswordFile(t *testing.T) {
	passwordPath := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(passwordPath, []byte(" \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	argv := []string{
		"-server", "smtp.example.org",
		"-user", "gateway",
		"-password-file", passwordPath,
		"-from", "gateway@example.org",
	}
	if _, err := parseArguments(argv); err == nil {
		t.Fatal("expected an error for an empty password file")
	}
}
