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

	"github.com/cesanta/glog"
	"github.com/dchest/uniuri"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// SessionDBAuth persists sessions as durable entities, so they survive
// process restarts. Lookups search the entity store by token and apply the
// same lazy expiration test as SessionExpAuth. Store faults surface as "no
// identity", never as a crash.
type SessionDBAuth struct {
	*SessionExpAuth
	sessions models.UserSessionStore
}

func NewSessionDBAuth(se *SessionExpAuth, sessions models.UserSessionStore) *SessionDBAuth {
	return &SessionDBAuth{SessionExpAuth: se, sessions: sessions}
}

// CreateSession persists the record synchronously; the token is only handed
// out once the record is stored.
func (sd *SessionDBAuth) CreateSession(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot create session without a user")
	}
	token := uniuri.NewLen(sessionTokenLen)
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := sd.sessions.Add(ctx, models.NewUserSession(userID, token)); err != nil {
		return "", err
	}
	glog.V(2).Infof("new durable session for user %s", userID)
	return token, nil
}

func (sd *SessionDBAuth) UserIDForSession(sessionID string) (string, error) {
	if sessionID == "" {
		return "", api.NoMatch
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	us, err := sd.sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			glog.Errorf("session store failure: %s", err)
		}
		return "", api.NoMatch
	}
	if sd.expired(us.CreatedAt) {
		glog.V(2).Infof("session for user %s expired", us.UserID)
		return "", ExpiredSession
	}
	return us.UserID, nil
}

func (sd *SessionDBAuth) CurrentUser(req *http.Request) (*models.User, error) {
	return currentSessionUser(sd, sd.users, req)
}

func (sd *SessionDBAuth) DestroySession(req *http.Request) bool {
	sessionID := sd.SessionCookie(req)
	if sessionID == "" {
		return false
	}
	if _, err := sd.UserIDForSession(sessionID); err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	us, err := sd.sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		return false
	}
	if err := sd.sessions.Remove(ctx, us.ID); err != nil {
		glog.Errorf("failed to remove durable session: %s", err)
		return false
	}
	return true
}

func (sd *SessionDBAuth) Name() string {
	return "session_db"
}
