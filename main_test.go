package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cleargate/api_auth/server"
)

func newSessionServer(t *testing.T) *server.AuthServer {
	t.Helper()
	c := &server.Config{
		Server: server.ServerConfig{ListenAddress: ":0"},
		Auth: server.AuthConfig{
			Type:          "session",
			SessionName:   "_session_id",
			ExcludedPaths: []string{"/status", "/auth_session/login", "/users"},
		},
	}
	c.SessionDB.LevelDB = filepath.Join(t.TempDir(), "sessions.ldb")
	as, err := server.NewAuthServer(c)
	if err != nil {
		t.Fatalf("NewAuthServer: %s", err)
	}
	return as
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "http://example.org"+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// A request that grabbed the server right before a config reload must be
// able to finish against it; the old server's stores stay open for a grace
// period instead of closing mid-request.
func TestSwapKeepsOldServerServing(t *testing.T) {
	old := newSessionServer(t)
	rs := &reloadingServer{as: old}

	form := url.Values{"email": {"u1@example.org"}, "password": {"secret"}}
	if rr := postForm(t, rs, "/users", form); rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rr.Code)
	}
	rr := postForm(t, rs, "/auth_session/login", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rr.Code)
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "_session_id" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}

	rs.swap(newSessionServer(t))

	// The old server's session store must still answer.
	req := httptest.NewRequest("GET", "http://example.org/users/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	old.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("request against the replaced server: expected 200, got %d", rec.Code)
	}

	// New requests land on the new server, which does not know the session.
	rec = httptest.NewRecorder()
	rs.ServeHTTP(rec, req.Clone(req.Context()))
	if rec.Code != http.StatusForbidden {
		t.Errorf("request against the new server: expected 403, got %d", rec.Code)
	}
}
