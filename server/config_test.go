package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(fn, []byte(text), 0600); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}
	return fn
}

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, `
server:
  addr: ":5600"
auth:
  type: session_exp
  session_name: _session_id
  session_duration: 3600
  excluded_paths:
    - /status
    - /public/*
session_db:
  level_db: /var/lib/api_auth/sessions.ldb
`))
	if err != nil {
		t.Fatalf("LoadConfig: %s", err)
	}
	if c.Auth.Type != "session_exp" || c.Auth.SessionName != "_session_id" {
		t.Errorf("unexpected auth config %+v", c.Auth)
	}
	if c.Auth.Duration() != time.Hour {
		t.Errorf("expected 1h duration, got %s", c.Auth.Duration())
	}
	if len(c.Auth.ExcludedPaths) != 2 {
		t.Errorf("unexpected excluded paths %v", c.Auth.ExcludedPaths)
	}
	if c.SessionDB.LevelDB != "/var/lib/api_auth/sessions.ldb" {
		t.Errorf("unexpected session db config %+v", c.SessionDB)
	}
}

func TestLoadConfigDefaultsToNone(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, `
server:
  addr: ":5600"
`))
	if err != nil {
		t.Fatalf("LoadConfig: %s", err)
	}
	if c.Auth.Type != "none" {
		t.Errorf("expected auth type to default to none, got %q", c.Auth.Type)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		desc string
		text string
	}{
		{"missing addr", `
auth:
  type: none
`},
		{"unknown auth type", `
server:
  addr: ":5600"
auth:
  type: token
`},
		{"session without cookie name", `
server:
  addr: ":5600"
auth:
  type: session
`},
		{"negative duration", `
server:
  addr: ":5600"
auth:
  type: session_exp
  session_name: _session_id
  session_duration: -1
`},
		{"basic without backends", `
server:
  addr: ":5600"
auth:
  type: basic
`},
		{"cert without key", `
server:
  addr: ":5600"
  certificate: /etc/ssl/server.pem
auth:
  type: none
`},
		{"not yaml", `{{{`},
	}
	for _, c := range cases {
		if _, err := LoadConfig(writeConfig(t, c.text)); err == nil {
			t.Errorf("%s: expected an error", c.desc)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
