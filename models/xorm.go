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
	"os"
	"time"

	"github.com/cesanta/glog"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"xorm.io/xorm"
)

// SQLConfig selects the SQL backend for the entity stores.
// The DSN is environment-expanded so credentials can come from the process
// environment.
type SQLConfig struct {
	Driver         string `yaml:"driver,omitempty"`
	DataSourceName string `yaml:"data_source_name,omitempty"`
}

func (c *SQLConfig) Validate(configKey string) error {
	if c.Driver == "" {
		return fmt.Errorf("%s.driver is required", configKey)
	}
	if c.DataSourceName == "" {
		return fmt.Errorf("%s.data_source_name is required", configKey)
	}
	return nil
}

// SQLStores bundles the xorm-backed user and session stores sharing one
// engine.
type SQLStores struct {
	engine *xorm.Engine
}

// NewSQLStores opens the engine and creates the tables if missing.
func NewSQLStores(c *SQLConfig) (*SQLStores, error) {
	engine, err := xorm.NewEngine(c.Driver, os.ExpandEnv(c.DataSourceName))
	if err != nil {
		return nil, err
	}
	if err := engine.Sync2(new(User), new(UserSession)); err != nil {
		return nil, fmt.Errorf("failed to sync schema: %s", err)
	}
	return &SQLStores{engine: engine}, nil
}

func (s *SQLStores) Users() UserStore               { return &sqlUserStore{s.engine} }
func (s *SQLStores) UserSessions() UserSessionStore { return &sqlUserSessionStore{s.engine} }

func (s *SQLStores) Close() error {
	return s.engine.Close()
}

type sqlUserStore struct {
	engine *xorm.Engine
}

func (s *sqlUserStore) Get(ctx context.Context, id string) (*User, error) {
	var u User
	has, err := s.engine.Context(ctx).ID(id).Get(&u)
	if err != nil {
		glog.Errorf("error accessing user store: %s", err)
		return nil, fmt.Errorf("error accessing user store: %s", err)
	}
	if !has {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *sqlUserStore) FindByEmail(ctx context.Context, email string) ([]*User, error) {
	var users []*User
	if err := s.engine.Context(ctx).Where("email = ?", email).Find(&users); err != nil {
		glog.Errorf("error searching user store: %s", err)
		return nil, fmt.Errorf("error searching user store: %s", err)
	}
	return users, nil
}

func (s *sqlUserStore) Add(ctx context.Context, u *User) error {
	_, err := s.engine.Context(ctx).Insert(u)
	return err
}

func (s *sqlUserStore) Update(ctx context.Context, id string, fields map[string]string) error {
	cols := map[string]interface{}{}
	for k, v := range fields {
		switch k {
		case "email", "first_name", "last_name":
			cols[k] = v
		case "password":
			h, err := HashPassword(v)
			if err != nil {
				return err
			}
			cols["password_hash"] = h
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
	}
	cols["updated_at"] = time.Now().UTC()
	n, err := s.engine.Context(ctx).Table(new(User)).ID(id).Update(cols)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlUserStore) Remove(ctx context.Context, id string) error {
	n, err := s.engine.Context(ctx).ID(id).Delete(new(User))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type sqlUserSessionStore struct {
	engine *xorm.Engine
}

func (s *sqlUserSessionStore) FindBySessionID(ctx context.Context, sessionID string) (*UserSession, error) {
	var us UserSession
	has, err := s.engine.Context(ctx).Where("session_id = ?", sessionID).Get(&us)
	if err != nil {
		glog.Errorf("error accessing session store: %s", err)
		return nil, fmt.Errorf("error accessing session store: %s", err)
	}
	if !has {
		return nil, ErrNotFound
	}
	return &us, nil
}

func (s *sqlUserSessionStore) Add(ctx context.Context, us *UserSession) error {
	_, err := s.engine.Context(ctx).Insert(us)
	return err
}

func (s *sqlUserSessionStore) Remove(ctx context.Context, id string) error {
	n, err := s.engine.Context(ctx).ID(id).Delete(new(UserSession))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
