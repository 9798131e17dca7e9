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

// UserSession is a durable session record. UserID is a back-reference, not
// ownership: removing the session leaves the user untouched.
type UserSession struct {
	ID        string    `xorm:"'id' pk varchar(64)" json:"id"`
	UserID    string    `xorm:"'user_id' index varchar(64)" json:"user_id"`
	SessionID string    `xorm:"'session_id' unique varchar(64)" json:"session_id"`
	CreatedAt time.Time `xorm:"'created_at' created" json:"created_at"`
}

func NewUserSession(userID, sessionID string) *UserSession {
	return &UserSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *UserSession) TableName() string { return "user_sessions" }
