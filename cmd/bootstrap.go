// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/chartvault/mdcore/catalog"
	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/figi"
	"github.com/chartvault/mdcore/healthcheck"
	"github.com/chartvault/mdcore/manifest"
	"github.com/chartvault/mdcore/partition"
	"github.com/chartvault/mdcore/pool"
	"github.com/chartvault/mdcore/provider"
	"github.com/chartvault/mdcore/query"
	"github.com/chartvault/mdcore/schema"
)

// engine bundles every long-lived collaborator a command needs, built
// once per invocation from resolved configuration. Grounded on the
// teacher's cmd/info.go and cmd/run.go, both of which construct a
// fresh library.Library per command rather than sharing process-wide
// state across cobra commands.
type engine struct {
	pool     *pool.Pool
	schema   *schema.Manager
	manifest *manifest.Tracker
	router   *partition.Router
	query    *query.Engine
	catalog  *catalog.Catalog
	health   *healthcheck.Client
	registry *provider.Registry
}

// bootstrap builds an engine from the process's resolved configuration.
// No concrete provider.Provider implementations ship with this engine
// (vendor wire protocols are a boundary-only concern per §1), so the
// returned registry starts empty; acquire-data reports KindNotFound for
// any --provider name it is given.
func bootstrap() (*engine, error) {
	root := resolveDataRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, data.NewError(data.KindInternal, "create data root "+root, err)
	}
	_ = resolveDBPassphrase() // validated/logged; see root.go for why it isn't applied yet

	p := pool.New()
	sm := schema.NewManager()

	mdir := filepath.Join(root, "manifests")
	var mt *manifest.Tracker
	var err error
	if bucket := viper.GetString("backblaze_bucket"); bucket != "" {
		mt, err = manifest.NewWithArchive(mdir, bucket)
	} else {
		mt, err = manifest.New(mdir)
	}
	if err != nil {
		return nil, err
	}

	router := partition.New(root, p, sm, mt)
	qe := query.New(router, p)

	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	if figiCachePath := viper.GetString("figi_cache"); figiCachePath != "" {
		fc := figi.NewCache()
		if err := fc.LoadFromFile(figiCachePath); err != nil {
			return nil, data.NewError(data.KindInternal, "load figi cache "+figiCachePath, err)
		}
		cat = cat.WithFigiCache(fc)
	}

	health := healthcheck.NewClient(viper.GetString("healthcheck_url"))

	return &engine{
		pool:     p,
		schema:   sm,
		manifest: mt,
		router:   router,
		query:    qe,
		catalog:  cat,
		health:   health,
		registry: provider.NewRegistry(),
	}, nil
}

func (e *engine) Close() {
	e.pool.Close()
}
