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

package authn

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cesanta/glog"
	"github.com/dchest/uniuri"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
	"github.com/cleargate/api_auth/sessions"
)

// sessionTokenLen is the length of issued session tokens. uniuri draws them
// from crypto/rand.
const sessionTokenLen = 32

// SessionAuth authenticates requests by an opaque session token carried in
// the configured cookie. Tokens are issued on login and mapped to a user in
// the session store.
type SessionAuth struct {
	*Auth
	store sessions.Store
	users models.UserStore
}

func NewSessionAuth(base *Auth, store sessions.Store, users models.UserStore) *SessionAuth {
	return &SessionAuth{Auth: base, store: store, users: users}
}

// CreateSession issues a fresh token for the user and records the mapping
// before returning it.
func (sa *SessionAuth) CreateSession(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot create session without a user")
	}
	token := uniuri.NewLen(sessionTokenLen)
	if err := sa.store.Put(token, &sessions.Record{UserID: userID, CreatedAt: time.Now().UTC()}); err != nil {
		return "", err
	}
	glog.V(2).Infof("new session for user %s", userID)
	return token, nil
}

// UserIDForSession maps a token through the store. NoMatch when the token
// is unknown; store faults also resolve to NoMatch, fail-closed.
func (sa *SessionAuth) UserIDForSession(sessionID string) (string, error) {
	if sessionID == "" {
		return "", api.NoMatch
	}
	r, err := sa.store.Get(sessionID)
	if err != nil {
		glog.Errorf("session store failure: %s", err)
		return "", api.NoMatch
	}
	if r == nil {
		return "", api.NoMatch
	}
	return r.UserID, nil
}

func (sa *SessionAuth) CurrentUser(req *http.Request) (*models.User, error) {
	return currentSessionUser(sa, sa.users, req)
}

// DestroySession removes the session named by the request's cookie. It
// reports false when there is no cookie or no live session behind it.
func (sa *SessionAuth) DestroySession(req *http.Request) bool {
	sessionID := sa.SessionCookie(req)
	if sessionID == "" {
		return false
	}
	if _, err := sa.UserIDForSession(sessionID); err != nil {
		return false
	}
	deleted, err := sa.store.Delete(sessionID)
	if err != nil {
		glog.Errorf("failed to destroy session: %s", err)
		return false
	}
	return deleted
}

func (sa *SessionAuth) Stop() {
	if err := sa.store.Close(); err != nil {
		glog.Errorf("failed to close session store: %s", err)
	}
}

func (sa *SessionAuth) Name() string {
	return "session"
}

// sessionResolver is the hook each session variant overrides; the
// cookie-to-user walk itself is shared.
type sessionResolver interface {
	SessionCookie(req *http.Request) string
	UserIDForSession(sessionID string) (string, error)
}

func currentSessionUser(s sessionResolver, users models.UserStore, req *http.Request) (*models.User, error) {
	sessionID := s.SessionCookie(req)
	if sessionID == "" {
		return nil, api.NoMatch
	}
	userID, err := s.UserIDForSession(sessionID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	u, err := users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			glog.Errorf("user store failure: %s", err)
		}
		return nil, api.NoMatch
	}
	return u, nil
}
