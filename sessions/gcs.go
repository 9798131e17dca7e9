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
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cesanta/glog"
	"golang.org/x/net/context"
	"google.golang.org/api/option"
)

// storeTimeout bounds every GCS call so a backend outage cannot stall the
// request that triggered the lookup.
const storeTimeout = 5 * time.Second

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// NewGCSStore returns a session store which uses Google Cloud Storage as
// backend. One object per session token; the bucket should not be shared
// with other apps or services.
func NewGCSStore(bucket, clientSecretFile string) (Store, error) {
	gcs, err := storage.NewClient(context.Background(), option.WithCredentialsFile(clientSecretFile))
	return &gcsStore{gcs, bucket}, err
}

type gcsStore struct {
	gcs    *storage.Client
	bucket string
}

func (s *gcsStore) String() string {
	return fmt.Sprintf("GCS: %s", s.bucket)
}

func (s *gcsStore) Put(sessionID string, r *Record) error {
	ctx, cancel := opCtx()
	defer cancel()
	wr := s.gcs.Bucket(s.bucket).Object(sessionID).NewWriter(ctx)
	if err := json.NewEncoder(wr).Encode(r); err != nil {
		glog.Errorf("failed to store session record %q: %s", sessionID, err)
		return fmt.Errorf("failed to store session record %q due: %v", sessionID, err)
	}
	return wr.Close()
}

func (s *gcsStore) Get(sessionID string) (*Record, error) {
	ctx, cancel := opCtx()
	defer cancel()
	rd, err := s.gcs.Bucket(s.bucket).Object(sessionID).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve session %q due: %v", sessionID, err)
	}
	defer rd.Close()

	var r Record
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		glog.Errorf("bad DB value for %q: %v", sessionID, err)
		return nil, fmt.Errorf("could not read session %q due: %v", sessionID, err)
	}
	return &r, nil
}

func (s *gcsStore) Delete(sessionID string) (bool, error) {
	ctx, cancel := opCtx()
	defer cancel()
	err := s.gcs.Bucket(s.bucket).Object(sessionID).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close is a nop operation for this store.
func (s *gcsStore) Close() error {
	return nil
}
