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

package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/cleargate/api_auth/authn"
	"github.com/cleargate/api_auth/models"
	"github.com/cleargate/api_auth/sessions"
	"github.com/cleargate/api_auth/utils"
)

// AuthTypes are the accepted values of auth.type.
var AuthTypes = []string{"none", "basic", "session", "session_exp", "session_db"}

type Config struct {
	Server    ServerConfig                   `yaml:"server"`
	Auth      AuthConfig                     `yaml:"auth"`
	Users     map[string]*authn.Requirements `yaml:"users,omitempty"`
	MongoAuth *authn.MongoAuthConfig         `yaml:"mongo_auth,omitempty"`
	SQLAuth   *authn.SQLAuthConfig           `yaml:"sql_auth,omitempty"`
	LDAPAuth  *authn.LDAPAuthConfig          `yaml:"ldap_auth,omitempty"`
	Storage   *models.SQLConfig              `yaml:"storage,omitempty"`
	SessionDB sessions.Config                `yaml:"session_db,omitempty"`
}

type ServerConfig struct {
	ListenAddress string `yaml:"addr,omitempty"`
	PathPrefix    string `yaml:"path_prefix,omitempty"`
	CertFile      string `yaml:"certificate,omitempty"`
	KeyFile       string `yaml:"key,omitempty"`
}

type AuthConfig struct {
	// Type selects the strategy variant, see AuthTypes.
	Type string `yaml:"type,omitempty"`
	// SessionName is the cookie carrying the session token.
	SessionName string `yaml:"session_name,omitempty"`
	// SessionDuration is the validity window in seconds; 0 never expires.
	SessionDuration int64 `yaml:"session_duration,omitempty"`
	// ExcludedPaths are exempt from authentication: exact paths (trailing
	// slash insignificant) or prefix rules ending in '*'.
	ExcludedPaths []string `yaml:"excluded_paths,omitempty"`
}

// Duration converts the configured window to a time.Duration.
func (c *AuthConfig) Duration() time.Duration {
	return time.Duration(c.SessionDuration) * time.Second
}

func validate(c *Config) error {
	if c.Server.ListenAddress == "" {
		return errors.New("server.addr is required")
	}
	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		return errors.New("server.certificate and server.key must be set together")
	}
	if c.Auth.Type == "" {
		c.Auth.Type = "none"
	}
	if !utils.StringInSlice(c.Auth.Type, AuthTypes) {
		return fmt.Errorf("auth.type must be one of %v, got %q", AuthTypes, c.Auth.Type)
	}
	if c.Auth.SessionDuration < 0 {
		return fmt.Errorf("auth.session_duration must not be negative, got %d", c.Auth.SessionDuration)
	}
	switch c.Auth.Type {
	case "session", "session_exp", "session_db":
		if c.Auth.SessionName == "" {
			return errors.New("auth.session_name is required for session auth types")
		}
	case "basic":
		if c.Users == nil && c.MongoAuth == nil && c.SQLAuth == nil && c.LDAPAuth == nil && c.Storage == nil {
			return errors.New("no user backends are configured, this is probably a mistake. Use an empty user map if you really want to deny everyone.")
		}
	}
	if c.MongoAuth != nil {
		if err := c.MongoAuth.Validate(); err != nil {
			return err
		}
	}
	if c.SQLAuth != nil {
		if err := c.SQLAuth.Validate("sql_auth"); err != nil {
			return err
		}
	}
	if c.LDAPAuth != nil {
		if err := c.LDAPAuth.Validate(); err != nil {
			return err
		}
	}
	if c.Storage != nil {
		if err := c.Storage.Validate("storage"); err != nil {
			return err
		}
	}
	return nil
}

func LoadConfig(fileName string) (*Config, error) {
	contents, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %s", fileName, err)
	}
	c := &Config{}
	if err = yaml.Unmarshal(contents, c); err != nil {
		return nil, fmt.Errorf("could not parse config: %s", err)
	}
	if err = validate(c); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	return c, nil
}
