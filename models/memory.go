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
	"fmt"
	"sync"
	"time"
)

// memUserStore keeps users in a mutex-guarded map. All state is lost on
// process restart.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemUserStore() UserStore {
	return &memUserStore{users: map[string]*User{}}
}

func (s *memUserStore) Get(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) ([]*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*User
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memUserStore) Add(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) Update(ctx context.Context, id string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v
		case "first_name":
			u.FirstName = v
		case "last_name":
			u.LastName = v
		case "password":
			if err := u.SetPassword(v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memUserStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[id] == nil {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// memUserSessionStore is the volatile counterpart for session records,
// indexed by session token.
type memUserSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*UserSession
}

func NewMemUserSessionStore() UserSessionStore {
	return &memUserSessionStore{sessions: map[string]*UserSession{}}
}

func (s *memUserSessionStore) FindBySessionID(ctx context.Context, sessionID string) (*UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	us := s.sessions[sessionID]
	if us == nil {
		return nil, ErrNotFound
	}
	cp := *us
	return &cp, nil
}

func (s *memUserSessionStore) Add(ctx context.Context, us *UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *us
	s.sessions[us.SessionID] = &cp
	return nil
}

func (s *memUserSessionStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, us := range s.sessions {
		if us.ID == id {
			delete(s.sessions, sid)
			return nil
		}
	}
	return ErrNotFound
}
