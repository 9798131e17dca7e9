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
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/cesanta/glog"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// BasicAuth resolves identities from the Authorization header using the
// Basic scheme. Credentials are checked against a chain of directories; the
// first directory that knows the user decides.
type BasicAuth struct {
	*Auth
	directories []Directory
}

func NewBasicAuth(base *Auth, directories []Directory) *BasicAuth {
	return &BasicAuth{Auth: base, directories: directories}
}

// extractBasicToken returns the credential part of a Basic Authorization
// header, "" if the header has a different scheme or no payload. The split
// is on the first space only.
func extractBasicToken(header string) string {
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Basic" {
		return ""
	}
	return token
}

// decodeBasicToken base64-decodes the token, tolerating a missing pad. It
// fails on anything that is not valid base64 or does not decode to UTF-8
// text.
func decodeBasicToken(token string) (string, bool) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(token)
		if err != nil {
			return "", false
		}
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// splitCredentials splits decoded credentials on the first ':' only, so the
// password itself may contain ':'.
func splitCredentials(decoded string) (user string, password string, ok bool) {
	return strings.Cut(decoded, ":")
}

// userFromCredentials runs the directory chain. NoMatch moves on to the
// next directory; WrongPass denies; a backend error denies fail-closed.
func (ba *BasicAuth) userFromCredentials(user string, password api.PasswordString) (*models.User, error) {
	for i, d := range ba.directories {
		u, err := d.Authenticate(user, password)
		glog.V(2).Infof("Authn %s %s -> %v, %v", d.Name(), user, u, err)
		if err != nil {
			if err == api.NoMatch {
				continue
			}
			if err == api.WrongPass {
				glog.Warningf("Failed authentication for %s", user)
				return nil, api.WrongPass
			}
			glog.Errorf("authn #%d returned error: %s", i+1, err)
			return nil, err
		}
		return u, nil
	}
	// Deny by default.
	glog.V(2).Infof("%s did not match any directory", user)
	return nil, api.NoMatch
}

// CurrentUser walks the full extraction pipeline: header, scheme, base64,
// credential split, directory lookup. A failure at any stage yields
// NoMatch, never a fault.
func (ba *BasicAuth) CurrentUser(req *http.Request) (*models.User, error) {
	header := ba.AuthorizationHeader(req)
	token := extractBasicToken(header)
	if token == "" {
		return nil, api.NoMatch
	}
	decoded, ok := decodeBasicToken(token)
	if !ok {
		return nil, api.NoMatch
	}
	user, password, ok := splitCredentials(decoded)
	if !ok {
		return nil, api.NoMatch
	}
	return ba.userFromCredentials(user, api.PasswordString(password))
}

func (ba *BasicAuth) Stop() {
	for _, d := range ba.directories {
		d.Stop()
	}
}

func (ba *BasicAuth) Name() string {
	return "basic"
}
