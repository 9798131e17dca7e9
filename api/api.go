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

package api

import (
	"errors"
	"net/http"

	"github.com/cleargate/api_auth/models"
)

// Strategy is the authentication policy active for the server. It decides
// which paths need credentials at all, pulls the credential material off the
// request, and resolves it to a user.
// Implementations must be goroutine-safe.
type Strategy interface {
	// RequiresAuth reports whether the path is subject to authentication.
	// An empty path always requires auth; with no exclusion rules configured
	// every path requires auth.
	RequiresAuth(path string) bool

	// AuthorizationHeader returns the raw Authorization header, or "" if
	// the request carries none.
	AuthorizationHeader(req *http.Request) string

	// SessionCookie returns the value of the configured session cookie, or
	// "" if the request carries none or no cookie name is configured.
	SessionCookie(req *http.Request) string

	// CurrentUser resolves the request's credentials to a user.
	// A special NoMatch error is returned when no identity could be
	// resolved; WrongPass when a known user failed verification. Errors are
	// never raised for malformed input, only for backend faults.
	CurrentUser(req *http.Request) (*models.User, error)

	// Finalize resources in preparation for shutdown.
	Stop()

	// Human-readable name of the strategy.
	Name() string
}

// SessionStrategy is implemented by strategies that issue session tokens.
type SessionStrategy interface {
	Strategy

	// CreateSession issues a fresh unguessable token mapped to the user and
	// records it before returning.
	CreateSession(userID string) (string, error)

	// DestroySession removes the session named by the request's cookie.
	// It returns false when there is no cookie or no matching session.
	DestroySession(req *http.Request) bool
}

var (
	// NoMatch - no identity could be resolved (malformed credential,
	// unknown user, unknown or expired session).
	NoMatch = errors.New("no matching identity")
	// WrongPass - the credential named a known user but the password did
	// not verify.
	WrongPass = errors.New("wrong password for user")
)

// PasswordString is a plain-text password that masks itself when formatted,
// so it never reaches logs.
type PasswordString string

func (ps PasswordString) String() string {
	if len(ps) == 0 {
		return ""
	}
	return "***"
}
