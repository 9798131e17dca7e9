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
	"net/http"

	"github.com/cesanta/glog"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// Decision is the gate's verdict for a request.
type Decision int

const (
	// Allowed - the path is exempt or the credentials resolved to a user.
	Allowed Decision = iota
	// Unauthenticated - the path needs credentials and none were supplied.
	// Maps to 401.
	Unauthenticated
	// Forbidden - credentials were supplied but did not resolve to a user.
	// Maps to 403.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Gate runs the active strategy against each incoming request. A supplied
// but invalid credential (stale cookie, wrong password) is Forbidden, not
// Unauthenticated; the two failure classes stay distinct.
type Gate struct {
	strategy api.Strategy
}

func NewGate(strategy api.Strategy) *Gate {
	return &Gate{strategy: strategy}
}

// Authorize returns the decision and, when Allowed by credentials, the
// resolved user. Exempt paths are Allowed with a nil (anonymous) user.
func (g *Gate) Authorize(req *http.Request) (Decision, *models.User) {
	if g.strategy == nil {
		return Allowed, nil
	}
	if !g.strategy.RequiresAuth(req.URL.Path) {
		glog.V(3).Infof("%s exempt from auth", req.URL.Path)
		return Allowed, nil
	}
	header := g.strategy.AuthorizationHeader(req)
	cookie := g.strategy.SessionCookie(req)
	if header == "" && cookie == "" {
		glog.V(2).Infof("%s: no credential supplied", req.URL.Path)
		return Unauthenticated, nil
	}
	u, err := g.strategy.CurrentUser(req)
	if err != nil || u == nil {
		glog.Warningf("%s: credential did not resolve: %v", req.URL.Path, err)
		return Forbidden, nil
	}
	glog.V(2).Infof("%s: authenticated as %s", req.URL.Path, u.ID)
	return Allowed, u
}
