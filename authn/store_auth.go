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

	"github.com/cesanta/glog"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// storeAuth authenticates against the persisted user entities. Several
// users may share an email; every candidate is checked and the first whose
// password verifies wins.
type storeAuth struct {
	users models.UserStore
}

func NewStoreAuth(users models.UserStore) Directory {
	return &storeAuth{users: users}
}

func (sa *storeAuth) Authenticate(user string, password api.PasswordString) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	candidates, err := sa.users.FindByEmail(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, api.NoMatch
	}
	glog.V(2).Infof("checking %d candidate(s) for %s", len(candidates), user)
	for _, u := range candidates {
		if u.ValidPassword(string(password)) {
			return u, nil
		}
	}
	return nil, api.WrongPass
}

func (sa *storeAuth) Stop() {
}

func (sa *storeAuth) Name() string {
	return "store"
}
