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
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// Auth is the strategy every other variant builds on. On its own it never
// resolves an identity; it only carries the exclusion rules and the
// credential extraction shared by the whole hierarchy.
type Auth struct {
	exact      mapset.Set // normalized exact-match rules
	prefixes   []string   // rules that ended in '*', marker stripped
	cookieName string
}

// NewAuth builds the base strategy. Rules are either exact paths (a
// trailing slash is insignificant) or prefix rules ending in '*'. cookieName
// is the session cookie consulted by SessionCookie; empty disables cookie
// extraction.
func NewAuth(excludedPaths []string, cookieName string) *Auth {
	a := &Auth{exact: mapset.NewSet(), cookieName: cookieName}
	for _, rule := range excludedPaths {
		if rule == "" {
			continue
		}
		if strings.HasSuffix(rule, "*") {
			a.prefixes = append(a.prefixes, strings.TrimSuffix(rule, "*"))
			continue
		}
		a.exact.Add(normalizePath(rule))
	}
	return a
}

// normalizePath makes "/status" and "/status/" compare equal. No other
// normalization happens here; resolving "." and ".." is the router's job.
func normalizePath(p string) string {
	if !strings.HasSuffix(p, "/") {
		return p + "/"
	}
	return p
}

// RequiresAuth reports whether the path is subject to authentication. An
// empty path always is, and so is every path when no rules are configured.
// Any matching rule excludes the path; rule order is irrelevant.
func (a *Auth) RequiresAuth(path string) bool {
	if path == "" {
		return true
	}
	for _, prefix := range a.prefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return !a.exact.Contains(normalizePath(path))
}

// AuthorizationHeader returns the raw Authorization header, "" if absent.
func (a *Auth) AuthorizationHeader(req *http.Request) string {
	if req == nil {
		return ""
	}
	return req.Header.Get("Authorization")
}

// SessionCookie returns the value of the configured session cookie.
func (a *Auth) SessionCookie(req *http.Request) string {
	if req == nil || a.cookieName == "" {
		return ""
	}
	c, err := req.Cookie(a.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// CurrentUser never resolves an identity; a concrete strategy must be
// swapped in to authenticate anyone.
func (a *Auth) CurrentUser(req *http.Request) (*models.User, error) {
	return nil, api.NoMatch
}

func (a *Auth) Stop() {
}

func (a *Auth) Name() string {
	return "none"
}
