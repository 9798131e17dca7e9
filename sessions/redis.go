package sessions

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cesanta/glog"
	"github.com/go-redis/redis"
)

type RedisClient interface {
	Get(key string) *redis.StringCmd
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(keys ...string) *redis.IntCmd
}

// NewRedisStore returns a session store that uses Redis as the storage
// backend.
func NewRedisStore(options *RedisConfig) (Store, error) {
	var client RedisClient
	if options.ClusterOptions != nil {
		if options.ClientOptions != nil {
			glog.Infof("Both redis.redis_options and redis.redis_cluster_options have been set. Only the latter will be used")
		}
		client = redis.NewClusterClient(options.ClusterOptions)
	} else {
		client = redis.NewClient(options.ClientOptions)
	}
	return &redisStore{client}, nil
}

type redisStore struct {
	client RedisClient
}

func (s *redisStore) String() string {
	return fmt.Sprintf("%v", s.client)
}

func (s *redisStore) Put(sessionID string, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := dbKeyPrefix + sessionID
	if err := s.client.Set(key, data, 0).Err(); err != nil {
		glog.Errorf("Failed to store session record <%s>: %s\n", key, err)
		return fmt.Errorf("Failed to store session record <%s>: %s", key, err)
	}
	return nil
}

func (s *redisStore) Get(sessionID string) (*Record, error) {
	if sessionID == "" {
		return nil, nil
	}
	key := dbKeyPrefix + sessionID
	result, err := s.client.Get(key).Result()
	if err == redis.Nil {
		glog.V(2).Infof("Key <%s> doesn't exist\n", key)
		return nil, nil
	} else if err != nil {
		glog.Errorf("Error getting Redis key <%s>: %s\n", key, err)
		return nil, fmt.Errorf("Error getting key <%s>: %s", key, err)
	}
	var r Record
	if err := json.Unmarshal([]byte(result), &r); err != nil {
		glog.Errorf("Error parsing value for session <%q>: %s", sessionID, err)
		return nil, fmt.Errorf("Error parsing value: %v", err)
	}
	return &r, nil
}

func (s *redisStore) Delete(sessionID string) (bool, error) {
	key := dbKeyPrefix + sessionID
	n, err := s.client.Del(key).Result()
	if err != nil {
		return false, fmt.Errorf("Failed to delete session <%s>: %s", key, err)
	}
	return n > 0, nil
}

func (s *redisStore) Close() error {
	return nil
}
