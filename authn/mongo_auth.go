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
	"errors"
	"time"

	"github.com/cesanta/glog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleargate/api_auth/api"
	"github.com/cleargate/api_auth/models"
)

// MongoAuthConfig stores how to connect to the MongoDB server holding user
// records.
type MongoAuthConfig struct {
	URI        string        `yaml:"uri,omitempty"`
	Database   string        `yaml:"database,omitempty"`
	Collection string        `yaml:"collection,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

// Validate ensures the required fields of a MongoAuthConfig are set.
func (c *MongoAuthConfig) Validate() error {
	if c.URI == "" {
		return errors.New("mongo_auth.uri is required")
	}
	if c.Database == "" {
		return errors.New("mongo_auth.database is required")
	}
	if c.Collection == "" {
		return errors.New("mongo_auth.collection is required")
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

type mongoAuth struct {
	config *MongoAuthConfig
	client *mongo.Client
}

type mongoUserEntry struct {
	ID           string `bson:"_id,omitempty"`
	Email        string `bson:"email,omitempty"`
	PasswordHash string `bson:"password_hash,omitempty"`
	FirstName    string `bson:"first_name,omitempty"`
	LastName     string `bson:"last_name,omitempty"`
}

func NewMongoAuth(c *MongoAuthConfig) (Directory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	glog.V(2).Infof("Creating MongoDB client (operation timeout %s)", c.Timeout)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, err
	}
	return &mongoAuth{config: c, client: client}, nil
}

func (ma *mongoAuth) Authenticate(user string, password api.PasswordString) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ma.config.Timeout)
	defer cancel()

	glog.V(2).Infof("Checking user %s against Mongo users. DB: %s, collection: %s",
		user, ma.config.Database, ma.config.Collection)
	collection := ma.client.Database(ma.config.Database).Collection(ma.config.Collection)
	var entry mongoUserEntry
	err := collection.FindOne(ctx, bson.M{"email": user}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, api.NoMatch
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)) != nil {
		return nil, api.WrongPass
	}
	return &models.User{
		ID:        entry.ID,
		Email:     entry.Email,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
	}, nil
}

func (ma *mongoAuth) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), ma.config.Timeout)
	defer cancel()
	if err := ma.client.Disconnect(ctx); err != nil {
		glog.Errorf("failed to disconnect from MongoDB: %s", err)
	}
}

func (ma *mongoAuth) Name() string {
	return "MongoDB"
}
