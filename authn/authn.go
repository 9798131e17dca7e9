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
	"errors"
	"time"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// ExpiredSession - the session record exists but its validity window has
// passed. Strategies report it as "no identity" to the gate.
var ExpiredSession = errors.New("expired session")

// storeTimeout bounds every call into a durable backend so a store outage
// cannot stall request handling.
const storeTimeout = 5 * time.Second

// Directory checks a user's credentials against one user backend.
// Given an identifier and a password (plain text), it responds with the user
// or an error. Error should only be reported if the request could not be
// serviced, not if it should be denied. A special NoMatch error is returned
// if the directory does not know the identifier; WrongPass if it does but
// the password failed verification.
// Implementations must be goroutine-safe.
type Directory interface {
	Authenticate(user string, password api.PasswordString) (*models.User, error)

	// Finalize resources in preparation for shutdown.
	Stop()

	// Human-readable name of the directory.
	Name() string
}
