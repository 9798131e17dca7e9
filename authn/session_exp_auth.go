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
	"net/http"
	"time"

	"github.com/cesanta/glog"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// SessionExpAuth adds a validity window to SessionAuth. A zero duration
// means sessions never expire. Expiration is checked lazily on lookup;
// expired records stay in the store until destroyed or overwritten.
type SessionExpAuth struct {
	*SessionAuth
	Duration time.Duration
}

func NewSessionExpAuth(sa *SessionAuth, duration time.Duration) *SessionExpAuth {
	return &SessionExpAuth{SessionAuth: sa, Duration: duration}
}

// UserIDForSession behaves like SessionAuth's, but a record past its window
// counts as absent.
func (se *SessionExpAuth) UserIDForSession(sessionID string) (string, error) {
	if sessionID == "" {
		return "", api.NoMatch
	}
	r, err := se.store.Get(sessionID)
	if err != nil {
		glog.Errorf("session store failure: %s", err)
		return "", api.NoMatch
	}
	if r == nil {
		return "", api.NoMatch
	}
	if se.expired(r.CreatedAt) {
		glog.V(2).Infof("session for user %s expired", r.UserID)
		return "", ExpiredSession
	}
	return r.UserID, nil
}

func (se *SessionExpAuth) expired(createdAt time.Time) bool {
	if se.Duration <= 0 {
		return false
	}
	return time.Now().After(createdAt.Add(se.Duration))
}

func (se *SessionExpAuth) CurrentUser(req *http.Request) (*models.User, error) {
	return currentSessionUser(se, se.users, req)
}

// DestroySession re-checks validity through the expiring lookup, so an
// already expired session cannot be "logged out".
func (se *SessionExpAuth) DestroySession(req *http.Request) bool {
	sessionID := se.SessionCookie(req)
	if sessionID == "" {
		return false
	}
	if _, err := se.UserIDForSession(sessionID); err != nil {
		return false
	}
	deleted, err := se.store.Delete(sessionID)
	if err != nil {
		glog.Errorf("failed to destroy session: %s", err)
		return false
	}
	return deleted
}

func (se *SessionExpAuth) Name() string {
	return "session_exp"
}
