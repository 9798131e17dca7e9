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
	"database/sql"
	"fmt"
	"os"

	"github.com/cesanta/glog"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// SQLAuthConfig points at an existing user table in an external SQL
// database. Column names are configurable so foreign schemas can be used
// as-is.
type SQLAuthConfig struct {
	Driver         string `yaml:"driver,omitempty"`
	DataSourceName string `yaml:"data_source_name,omitempty"`
	Table          string `yaml:"table,omitempty"`
	UserColumn     string `yaml:"user_column,omitempty"`
	PasswordColumn string `yaml:"password_column,omitempty"`
}

func (c *SQLAuthConfig) Validate(configKey string) error {
	if c.Driver == "" {
		return fmt.Errorf("%s.driver is required", configKey)
	}
	if c.DataSourceName == "" {
		return fmt.Errorf("%s.data_source_name is required", configKey)
	}
	if c.Table == "" {
		return fmt.Errorf("%s.table is required", configKey)
	}
	if c.UserColumn == "" {
		return fmt.Errorf("%s.user_column is required", configKey)
	}
	if c.PasswordColumn == "" {
		return fmt.Errorf("%s.password_column is required", configKey)
	}
	return nil
}

type sqlAuth struct {
	db     *sql.DB
	config *SQLAuthConfig
	query  string
}

func NewSQLAuth(c *SQLAuthConfig) (Directory, error) {
	db, err := sql.Open(c.Driver, os.ExpandEnv(c.DataSourceName))
	if err != nil {
		return nil, err
	}
	return &sqlAuth{db: db, config: c, query: lookupQuery(c)}, nil
}

// lookupQuery builds the credential lookup for the configured schema.
// postgres wants numbered placeholders; the other drivers take '?'.
func lookupQuery(c *SQLAuthConfig) string {
	placeholder := "?"
	if c.Driver == "postgres" {
		placeholder = "$1"
	}
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = %s",
		c.UserColumn, c.PasswordColumn, c.Table, c.UserColumn, placeholder)
}

func (sa *sqlAuth) Authenticate(user string, password api.PasswordString) (*models.User, error) {
	glog.V(2).Infof("Checking user %s against SQL users. driver: %s, table: %s",
		user, sa.config.Driver, sa.config.Table)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var dbUser, dbPassword string
	if err := sa.db.QueryRowContext(ctx, sa.query, user).Scan(&dbUser, &dbPassword); err != nil {
		if err == sql.ErrNoRows {
			return nil, api.NoMatch
		}
		return nil, err
	}
	if dbPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(dbPassword), []byte(password)) != nil {
			return nil, api.WrongPass
		}
	}
	return &models.User{ID: dbUser, Email: dbUser}, nil
}

func (sa *sqlAuth) Stop() {
	if sa.db != nil {
		sa.db.Close()
	}
}

func (sa *sqlAuth) Name() string {
	return sa.config.Driver
}
