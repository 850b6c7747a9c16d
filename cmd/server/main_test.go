package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version output = %q, want %q", got, version)
	}
}

func TestServe_InsecureSecretInProduction_Fails(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve", "--port", "0"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() error = nil, want insecure secret error")
	}
}
