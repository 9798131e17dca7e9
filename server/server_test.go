package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, c *Config) *AuthServer {
	t.Helper()
	as, err := NewAuthServer(c)
	if err != nil {
		t.Fatalf("NewAuthServer: %s", err)
	}
	t.Cleanup(as.Stop)
	return as
}

func sessionConfig() *Config {
	return &Config{
		Server: ServerConfig{ListenAddress: ":0"},
		Auth: AuthConfig{
			Type:            "session_exp",
			SessionName:     "_session_id",
			SessionDuration: 3600,
			ExcludedPaths:   []string{"/status", "/auth_session/login", "/users"},
		},
	}
}

func do(as *AuthServer, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	as.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest("POST", "http://example.org"+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON body %q: %s", rr.Body.String(), err)
	}
	return body
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", name)
	return nil
}

func TestStatusEndpoint(t *testing.T) {
	as := newTestServer(t, sessionConfig())
	rr := do(as, httptest.NewRequest("GET", "http://example.org/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["status"] != "OK" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestGateErrorBodies(t *testing.T) {
	as := newTestServer(t, sessionConfig())

	rr := do(as, httptest.NewRequest("GET", "http://example.org/users/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "Unauthorized" {
		t.Errorf("unexpected 401 body %v", body)
	}

	req := httptest.NewRequest("GET", "http://example.org/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "_session_id", Value: "bogus"})
	rr = do(as, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "Forbidden" {
		t.Errorf("unexpected 403 body %v", body)
	}
}

func TestRegisterValidation(t *testing.T) {
	as := newTestServer(t, sessionConfig())

	rr := do(as, postForm("/users", url.Values{"password": {"secret"}}, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", rr.Code)
	}
	rr = do(as, postForm("/users", url.Values{"email": {"u1@example.org"}}, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", rr.Code)
	}

	form := url.Values{"email": {"u1@example.org"}, "password": {"secret"}}
	rr = do(as, postForm("/users", form, nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["email"] != "u1@example.org" {
		t.Errorf("unexpected body %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("response body leaks the password hash")
	}

	rr = do(as, postForm("/users", form, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate email: expected 400, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "user u1@example.org already exists" {
		t.Errorf("unexpected duplicate body %v", body)
	}
}

func TestSessionLoginFlow(t *testing.T) {
	as := newTestServer(t, sessionConfig())

	register := url.Values{
		"email":      {"u1@example.org"},
		"password":   {"secret"},
		"first_name": {"Ada"},
	}
	if rr := do(as, postForm("/users", register, nil)); rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rr.Code)
	}

	// Bad credentials first.
	rr := do(as, postForm("/auth_session/login", url.Values{"email": {"u1@example.org"}}, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", rr.Code)
	}
	rr = do(as, postForm("/auth_session/login",
		url.Values{"email": {"nobody@example.org"}, "password": {"secret"}}, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", rr.Code)
	}
	rr = do(as, postForm("/auth_session/login",
		url.Values{"email": {"u1@example.org"}, "password": {"wrong"}}, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rr.Code)
	}

	// Successful login sets the session cookie.
	rr = do(as, postForm("/auth_session/login",
		url.Values{"email": {"u1@example.org"}, "password": {"secret"}}, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cookie := sessionCookie(t, rr, "_session_id")
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	// The cookie authenticates subsequent requests.
	req := httptest.NewRequest("GET", "http://example.org/users/me", nil)
	req.AddCookie(cookie)
	rr = do(as, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["email"] != "u1@example.org" || body["first_name"] != "Ada" {
		t.Errorf("unexpected me body %v", body)
	}

	// Logout destroys the session; the cookie is then a stale credential.
	req = httptest.NewRequest("DELETE", "http://example.org/auth_session/logout", nil)
	req.AddCookie(cookie)
	if rr := do(as, req); rr.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rr.Code)
	}
	req = httptest.NewRequest("GET", "http://example.org/users/me", nil)
	req.AddCookie(cookie)
	if rr := do(as, req); rr.Code != http.StatusForbidden {
		t.Errorf("me after logout: expected 403, got %d", rr.Code)
	}
	// A second logout is stopped by the gate: the cookie no longer
	// resolves to anyone.
	req = httptest.NewRequest("DELETE", "http://example.org/auth_session/logout", nil)
	req.AddCookie(cookie)
	if rr := do(as, req); rr.Code != http.StatusForbidden {
		t.Errorf("second logout: expected 403, got %d", rr.Code)
	}
}

func TestLoginRequiresSessionStrategy(t *testing.T) {
	c := sessionConfig()
	c.Auth.Type = "none"
	c.Auth.SessionName = ""
	as := newTestServer(t, c)

	rr := do(as, postForm("/auth_session/login",
		url.Values{"email": {"u1@example.org"}, "password": {"secret"}}, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a session strategy, got %d", rr.Code)
	}
}

func TestBasicAuthServer(t *testing.T) {
	c := sessionConfig()
	c.Auth = AuthConfig{Type: "basic", ExcludedPaths: []string{"/status", "/users"}}
	as := newTestServer(t, c)

	form := url.Values{"email": {"u1@example.org"}, "password": {"secret"}}
	if rr := do(as, postForm("/users", form, nil)); rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "http://example.org/users/me", nil)
	req.SetBasicAuth("u1@example.org", "secret")
	rr := do(as, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["email"] != "u1@example.org" {
		t.Errorf("unexpected body %v", body)
	}

	req = httptest.NewRequest("GET", "http://example.org/users/me", nil)
	req.SetBasicAuth("u1@example.org", "wrong")
	if rr := do(as, req); rr.Code != http.StatusForbidden {
		t.Errorf("wrong password: expected 403, got %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	// Unknown but excluded paths fall through to 404.
	c := sessionConfig()
	c.Auth.ExcludedPaths = append(c.Auth.ExcludedPaths, "/public/*")
	as := newTestServer(t, c)
	rr := do(as, httptest.NewRequest("GET", "http://example.org/public/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}
