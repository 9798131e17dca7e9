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

package sessions

import "sync"

// memStore holds session records in a mutex-guarded map. Suitable for
// single-process deployments that accept losing sessions on restart.
type memStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemStore() Store {
	return &memStore{records: map[string]Record{}}
}

func (s *memStore) String() string {
	return "memory"
}

func (s *memStore) Put(sessionID string, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = *r
	return nil
}

func (s *memStore) Get(sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[sessionID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memStore) Delete(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[sessionID]; !ok {
		return false, nil
	}
	delete(s.records, sessionID)
	return true, nil
}

func (s *memStore) Close() error {
	return nil
}
