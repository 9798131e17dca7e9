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
	"time"

	"github.com/go-redis/redis"
)

// Record is stored in the database, JSON-serialized, keyed by session token.
type Record struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store maps session tokens to records. Records are written on login, read
// on every authenticated request, and deleted on logout. Expired records are
// not removed here; expiration is the strategy's concern and is evaluated
// lazily on lookup.
// Implementations must be goroutine-safe.
type Store interface {
	// Put records the mapping, overwriting any previous record.
	Put(sessionID string, r *Record) error

	// Get returns the record for the token, or nil if there is none.
	Get(sessionID string) (*Record, error)

	// Delete removes the mapping and reports whether one existed.
	Delete(sessionID string) (bool, error)

	Close() error
}

// Config is a shared YAML configuration structure for the session store
// backends. At most one backend may be set; with none set, sessions are held
// in process memory and lost on restart.
type Config struct {
	LevelDB string       `yaml:"level_db,omitempty"`
	GCS     *GCSConfig   `yaml:"gcs,omitempty"`
	Redis   *RedisConfig `yaml:"redis,omitempty"`
}

// GCSConfig is Google Cloud Storage-based session storage configuration.
type GCSConfig struct {
	Bucket           string `yaml:"bucket,omitempty"`
	ClientSecretFile string `yaml:"client_secret_file,omitempty"`
}

// RedisConfig is Redis-based session storage configuration.
type RedisConfig struct {
	ClientOptions  *redis.Options        `yaml:"redis_options,omitempty"`
	ClusterOptions *redis.ClusterOptions `yaml:"redis_cluster_options,omitempty"`
}

// NewStore selects the backend from the configuration.
func NewStore(c Config) (Store, error) {
	switch {
	case c.LevelDB != "":
		return NewLevelDBStore(c.LevelDB)
	case c.GCS != nil:
		return NewGCSStore(c.GCS.Bucket, c.GCS.ClientSecretFile)
	case c.Redis != nil:
		return NewRedisStore(c.Redis)
	default:
		return NewMemStore(), nil
	}
}
