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

package models

import (
	"context"
	"errors"
)

var (
	// ErrNotFound - the entity does not exist. Authentication layers treat
	// this as "no identity", never as a fault.
	ErrNotFound = errors.New("entity not found")

	// ErrUnknownField - an Update named a field that is not part of the
	// entity. This is a programming error on the caller's side.
	ErrUnknownField = errors.New("unknown field")
)

// UserStore persists User entities.
// Implementations must be goroutine-safe.
type UserStore interface {
	// Get returns the user with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*User, error)

	// FindByEmail returns every user whose stored email equals the argument
	// exactly. Duplicate emails yield multiple candidates; an empty slice
	// means no match.
	FindByEmail(ctx context.Context, email string) ([]*User, error)

	// Add stores a new user.
	Add(ctx context.Context, u *User) error

	// Update mutates the named fields of an existing user. Naming a field
	// that does not exist returns ErrUnknownField. Passwords passed under
	// the "password" field are hashed before storage.
	Update(ctx context.Context, id string, fields map[string]string) error

	// Remove deletes the user. Removing an absent user returns ErrNotFound.
	Remove(ctx context.Context, id string) error
}

// UserSessionStore persists UserSession entities.
// Implementations must be goroutine-safe.
type UserSessionStore interface {
	// FindBySessionID returns the session record for the token, or
	// ErrNotFound. At most one record per token is expected; duplicates are
	// a caller error and the first match is returned.
	FindBySessionID(ctx context.Context, sessionID string) (*UserSession, error)

	// Add stores a new session record.
	Add(ctx context.Context, s *UserSession) error

	// Remove deletes the session record with the given entity ID.
	Remove(ctx context.Context, id string) error
}
