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

package main

import (
	"flag"
	"net/http"
	"sync"
	"time"

	"github.com/cesanta/glog"
	fsnotify "gopkg.in/fsnotify.v1"

	"github.com/cleargate/api_auth/server"
)

// stopGrace is how long a replaced server keeps its stores open for requests
// that grabbed it before the swap.
const stopGrace = 5 * time.Second

// reloadingServer swaps the underlying AuthServer when the config file
// changes, without dropping the listener.
type reloadingServer struct {
	mu sync.RWMutex
	as *server.AuthServer
}

func (rs *reloadingServer) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	rs.mu.RLock()
	as := rs.as
	rs.mu.RUnlock()
	as.ServeHTTP(rw, req)
}

func (rs *reloadingServer) swap(as *server.AuthServer) {
	rs.mu.Lock()
	old := rs.as
	rs.as = as
	rs.mu.Unlock()
	if old != nil {
		// In-flight requests may still hold the old server; let them
		// finish before its stores are closed.
		time.AfterFunc(stopGrace, old.Stop)
	}
}

func watchConfig(configFile string, rs *reloadingServer) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		glog.Errorf("Failed to watch config: %s", err)
		return
	}
	if err := watcher.Add(configFile); err != nil {
		glog.Errorf("Failed to watch %s: %s", configFile, err)
		return
	}
	for {
		select {
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			glog.Infof("Config changed (%s), reloading", ev)
			config, err := server.LoadConfig(configFile)
			if err != nil {
				glog.Errorf("Failed to reload config, keeping the old one: %s", err)
				continue
			}
			as, err := server.NewAuthServer(config)
			if err != nil {
				glog.Errorf("Failed to rebuild auth server, keeping the old one: %s", err)
				continue
			}
			rs.swap(as)
		case err := <-watcher.Errors:
			glog.Errorf("Config watcher error: %s", err)
		}
	}
}

func main() {
	flag.Parse()

	configFile := flag.Arg(0)
	if configFile == "" {
		glog.Exitf("Config file not specified")
	}
	config, err := server.LoadConfig(configFile)
	if err != nil {
		glog.Exitf("Failed to load config: %s", err)
	}
	glog.Infof("Config from %s (auth type %q, %d static users, %d excluded paths)",
		configFile, config.Auth.Type, len(config.Users), len(config.Auth.ExcludedPaths))

	s, err := server.NewAuthServer(config)
	if err != nil {
		glog.Exitf("Failed to create auth server: %s", err)
	}
	rs := &reloadingServer{as: s}
	go watchConfig(configFile, rs)

	sc := &config.Server
	glog.Infof("Listening on %s", sc.ListenAddress)
	if sc.CertFile != "" {
		err = http.ListenAndServeTLS(sc.ListenAddress, sc.CertFile, sc.KeyFile, rs)
	} else {
		err = http.ListenAndServe(sc.ListenAddress, rs)
	}
	if err != nil {
		glog.Exitf("Failed to set up server: %s", err)
	}
}
