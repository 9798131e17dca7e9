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
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is only ever written through
// SetPassword; the plain text is never stored.
type User struct {
	ID           string    `xorm:"'id' pk varchar(64)" json:"id"`
	Email        string    `xorm:"'email' index varchar(255)" json:"email"`
	PasswordHash string    `xorm:"'password_hash' varchar(255)" json:"-"`
	FirstName    string    `xorm:"'first_name' varchar(255)" json:"first_name,omitempty"`
	LastName     string    `xorm:"'last_name' varchar(255)" json:"last_name,omitempty"`
	CreatedAt    time.Time `xorm:"'created_at' created" json:"created_at"`
	UpdatedAt    time.Time `xorm:"'updated_at' updated" json:"updated_at"`
}

func NewUser(email string) *User {
	return &User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// SetPassword hashes the plain text and stores the digest.
func (u *User) SetPassword(plain string) error {
	h, err := HashPassword(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = h
	return nil
}

// ValidPassword reports whether plain matches the stored digest. A user
// without a digest never validates.
func (u *User) ValidPassword(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return CheckPassword(u.PasswordHash, plain)
}

// DisplayName derives a printable name from the profile fields, falling back
// to the email address.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

func (u *User) String() string {
	return "{" + u.ID + " " + u.Email + "}"
}

// TableName implements xorm's table naming.
func (u *User) TableName() string { return "users" }
