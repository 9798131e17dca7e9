/*
   Copyright 2025 Cleargate Software Ltd.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       https://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cesanta/glog"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/authn"
	"github.com/cleargate/api_auth/models"
	"github.com/cleargate/api_auth/sessions"
)

// AuthServer wires the configured strategy, the user stores, and the HTTP
// endpoints together. The gate runs before every route; which paths skip it
// is the operator's excluded_paths choice (the status and login routes
// usually do).
type AuthServer struct {
	config    *Config
	strategy  api.Strategy
	gate      *Gate
	users     models.UserStore
	sqlStores *models.SQLStores
}

func NewAuthServer(c *Config) (*AuthServer, error) {
	as := &AuthServer{config: c}

	var userSessions models.UserSessionStore
	if c.Storage != nil {
		stores, err := models.NewSQLStores(c.Storage)
		if err != nil {
			return nil, err
		}
		as.sqlStores = stores
		as.users = stores.Users()
		userSessions = stores.UserSessions()
	} else {
		as.users = models.NewMemUserStore()
		userSessions = models.NewMemUserSessionStore()
	}

	directories := []authn.Directory{}
	if c.Users != nil {
		directories = append(directories, authn.NewStaticUserAuth(c.Users))
	}
	directories = append(directories, authn.NewStoreAuth(as.users))
	if c.MongoAuth != nil {
		ma, err := authn.NewMongoAuth(c.MongoAuth)
		if err != nil {
			return nil, err
		}
		directories = append(directories, ma)
	}
	if c.SQLAuth != nil {
		sa, err := authn.NewSQLAuth(c.SQLAuth)
		if err != nil {
			return nil, err
		}
		directories = append(directories, sa)
	}
	if c.LDAPAuth != nil {
		la, err := authn.NewLDAPAuth(c.LDAPAuth)
		if err != nil {
			return nil, err
		}
		directories = append(directories, la)
	}

	base := authn.NewAuth(c.Auth.ExcludedPaths, c.Auth.SessionName)
	switch c.Auth.Type {
	case "none":
		as.strategy = base
	case "basic":
		as.strategy = authn.NewBasicAuth(base, directories)
	case "session", "session_exp", "session_db":
		store, err := sessions.NewStore(c.SessionDB)
		if err != nil {
			return nil, err
		}
		sa := authn.NewSessionAuth(base, store, as.users)
		switch c.Auth.Type {
		case "session":
			as.strategy = sa
		case "session_exp":
			as.strategy = authn.NewSessionExpAuth(sa, c.Auth.Duration())
		case "session_db":
			exp := authn.NewSessionExpAuth(sa, c.Auth.Duration())
			as.strategy = authn.NewSessionDBAuth(exp, userSessions)
		}
	default:
		return nil, fmt.Errorf("unknown auth type %q", c.Auth.Type)
	}
	as.gate = NewGate(as.strategy)
	return as, nil
}

// Strategy exposes the active strategy, mostly for tests.
func (as *AuthServer) Strategy() api.Strategy {
	return as.strategy
}

func (as *AuthServer) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	glog.V(3).Infof("Request: %s %s", req.Method, req.URL.Path)
	decision, user := as.gate.Authorize(req)
	switch decision {
	case Unauthenticated:
		writeError(rw, http.StatusUnauthorized, "Unauthorized")
		return
	case Forbidden:
		writeError(rw, http.StatusForbidden, "Forbidden")
		return
	}

	prefix := as.config.Server.PathPrefix
	switch {
	case req.URL.Path == prefix+"/status":
		writeJSON(rw, http.StatusOK, map[string]string{"status": "OK"})
	case req.URL.Path == prefix+"/auth_session/login" && req.Method == http.MethodPost:
		as.doLogin(rw, req)
	case req.URL.Path == prefix+"/auth_session/logout" && req.Method == http.MethodDelete:
		as.doLogout(rw, req)
	case req.URL.Path == prefix+"/users" && req.Method == http.MethodPost:
		as.doRegister(rw, req)
	case req.URL.Path == prefix+"/users/me" && req.Method == http.MethodGet:
		as.doMe(rw, user)
	default:
		writeError(rw, http.StatusNotFound, "Not found")
	}
}

// doLogin checks the submitted credentials against every candidate sharing
// the email and issues a session for the first match.
func (as *AuthServer) doLogin(rw http.ResponseWriter, req *http.Request) {
	email := req.PostFormValue("email")
	password := req.PostFormValue("password")
	if email == "" {
		writeError(rw, http.StatusBadRequest, "email missing")
		return
	}
	if password == "" {
		writeError(rw, http.StatusBadRequest, "password missing")
		return
	}
	ss, ok := as.strategy.(api.SessionStrategy)
	if !ok {
		writeError(rw, http.StatusNotFound, "Not found")
		return
	}
	candidates, err := as.users.FindByEmail(req.Context(), email)
	if err != nil {
		glog.Errorf("user search failed: %s", err)
		writeError(rw, http.StatusInternalServerError, "user lookup failed")
		return
	}
	if len(candidates) == 0 {
		writeError(rw, http.StatusNotFound, "no user found for this email")
		return
	}
	for _, u := range candidates {
		if !u.ValidPassword(password) {
			continue
		}
		token, err := ss.CreateSession(u.ID)
		if err != nil {
			glog.Errorf("failed to create session for %s: %s", u.ID, err)
			writeError(rw, http.StatusInternalServerError, "session creation failed")
			return
		}
		http.SetCookie(rw, &http.Cookie{
			Name:     as.config.Auth.SessionName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})
		writeJSON(rw, http.StatusOK, u)
		return
	}
	writeError(rw, http.StatusUnauthorized, "wrong password")
}

func (as *AuthServer) doLogout(rw http.ResponseWriter, req *http.Request) {
	ss, ok := as.strategy.(api.SessionStrategy)
	if !ok || !ss.DestroySession(req) {
		writeError(rw, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(rw, http.StatusOK, map[string]string{})
}

func (as *AuthServer) doRegister(rw http.ResponseWriter, req *http.Request) {
	email := req.PostFormValue("email")
	password := req.PostFormValue("password")
	if email == "" {
		writeError(rw, http.StatusBadRequest, "email missing")
		return
	}
	if password == "" {
		writeError(rw, http.StatusBadRequest, "password missing")
		return
	}
	existing, err := as.users.FindByEmail(req.Context(), email)
	if err != nil {
		glog.Errorf("user search failed: %s", err)
		writeError(rw, http.StatusInternalServerError, "user lookup failed")
		return
	}
	if len(existing) > 0 {
		writeError(rw, http.StatusBadRequest, fmt.Sprintf("user %s already exists", email))
		return
	}
	u := models.NewUser(email)
	u.FirstName = req.PostFormValue("first_name")
	u.LastName = req.PostFormValue("last_name")
	if err := u.SetPassword(password); err != nil {
		glog.Errorf("failed to hash password: %s", err)
		writeError(rw, http.StatusInternalServerError, "registration failed")
		return
	}
	if err := as.users.Add(req.Context(), u); err != nil {
		glog.Errorf("failed to store user: %s", err)
		writeError(rw, http.StatusInternalServerError, "registration failed")
		return
	}
	glog.Infof("registered user %s", u.ID)
	writeJSON(rw, http.StatusCreated, u)
}

func (as *AuthServer) doMe(rw http.ResponseWriter, user *models.User) {
	if user == nil {
		writeError(rw, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(rw, http.StatusOK, user)
}

func (as *AuthServer) Stop() {
	as.strategy.Stop()
	if as.sqlStores != nil {
		if err := as.sqlStores.Close(); err != nil {
			glog.Errorf("failed to close storage: %s", err)
		}
	}
	glog.Infof("Server stopped")
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		glog.Errorf("failed to write response: %s", err)
	}
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	writeJSON(rw, status, map[string]string{"error": msg})
}
