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
	"crypto/tls"
	"fmt"

	"github.com/go-ldap/ldap"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// LDAPAuthConfig describes the LDAP server to bind against. The bind DN is
// "<user attribute>=<user>,<suffix>".
type LDAPAuthConfig struct {
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	Suffix        string `yaml:"suffix,omitempty"`
	UserAttribute string `yaml:"user_attribute,omitempty"`
	TLS           bool   `yaml:"tls,omitempty"`
	Insecure      bool   `yaml:"insecure,omitempty"`
}

func (c *LDAPAuthConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("ldap_auth.host is required")
	}
	if c.Port == 0 {
		c.Port = 389
	}
	if c.UserAttribute == "" {
		c.UserAttribute = "uid"
	}
	return nil
}

type ldapAuth struct {
	config *LDAPAuthConfig
}

func NewLDAPAuth(config *LDAPAuthConfig) (Directory, error) {
	return &ldapAuth{config: config}, nil
}

// connect dials per authentication attempt; ldap connections are not safe
// for concurrent binds.
func (la *ldapAuth) connect() (*ldap.Conn, error) {
	addr := fmt.Sprintf("%s:%d", la.config.Host, la.config.Port)
	if la.config.TLS {
		tlsConfig := &tls.Config{ServerName: la.config.Host}
		if la.config.Insecure {
			tlsConfig = &tls.Config{InsecureSkipVerify: true}
		}
		return ldap.DialTLS("tcp", addr, tlsConfig)
	}
	return ldap.Dial("tcp", addr)
}

func (la *ldapAuth) Authenticate(user string, password api.PasswordString) (*models.User, error) {
	conn, err := la.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dn := fmt.Sprintf("%s=%s", la.config.UserAttribute, user)
	if la.config.Suffix != "" {
		dn = dn + "," + la.config.Suffix
	}
	if err := conn.Bind(dn, string(password)); err != nil {
		return nil, api.WrongPass
	}
	return &models.User{ID: user, Email: user}, nil
}

func (la *ldapAuth) Stop() {
}

func (la *ldapAuth) Name() string {
	return "LDAP"
}
