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

import (
	"encoding/json"
	"fmt"

	"github.com/cesanta/glog"
	"github.com/syndtr/goleveldb/leveldb"
)

const dbKeyPrefix = "s:" // Keys in the database are s:<session token>

type leveldbStore struct {
	*leveldb.DB
	path string
}

// NewLevelDBStore returns a LevelDB-backed session store. Records survive
// process restarts.
func NewLevelDBStore(file string) (Store, error) {
	db, err := leveldb.OpenFile(file, nil)
	return &leveldbStore{DB: db, path: file}, err
}

func (s *leveldbStore) String() string {
	return s.path
}

func (s *leveldbStore) Put(sessionID string, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	err = s.DB.Put(dbKey(sessionID), data, nil)
	if err != nil {
		glog.Errorf("failed to store session record: %s", err)
	}
	return err
}

func (s *leveldbStore) Get(sessionID string) (*Record, error) {
	data, err := s.DB.Get(dbKey(sessionID), nil)
	switch {
	case err == leveldb.ErrNotFound:
		return nil, nil
	case err != nil:
		glog.Errorf("error accessing session db: %s", err)
		return nil, fmt.Errorf("error accessing session db: %s", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		glog.Errorf("bad DB value for %q: %s", sessionID, err)
		return nil, fmt.Errorf("bad DB value: %v", err)
	}
	return &r, nil
}

func (s *leveldbStore) Delete(sessionID string) (bool, error) {
	has, err := s.DB.Has(dbKey(sessionID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %s", err)
	}
	if !has {
		return false, nil
	}
	if err := s.DB.Delete(dbKey(sessionID), nil); err != nil {
		return false, fmt.Errorf("failed to delete session: %s", err)
	}
	return true, nil
}

func dbKey(sessionID string) []byte {
	return []byte(dbKeyPrefix + sessionID)
}
