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

// Package provider declares the interface boundary for external data
// collaborators, per §1: "external collaborators, interfaces only" —
// this package never speaks a vendor wire protocol itself. Grounded on
// the teacher's Provider/Dataset shape, narrowed to the bar types this
// engine persists instead of the teacher's broader Observation model.
package provider

import (
	"context"
	"time"

	"github.com/chartvault/mdcore/data"
)

// Provider describes one external data vendor's integration surface.
type Provider interface {
	Name() string
	ConfigDescription() map[string]string
	Description() string
	Datasets() map[string]Dataset
}

// Dataset is one fetchable series a Provider exposes.
type Dataset struct {
	Name        string
	Description string
	Category    data.Category
	Granularity data.Granularity
	DateRange   func() (time.Time, time.Time)

	// Fetch is invoked by the acquire-data command. It receives the
	// provider's configuration, writes *data.EquityBar or *data.OptionBar
	// values to out, and reports a final data.RunSummary on summary when
	// done. Engine code never inspects a vendor's wire format directly:
	// everything past Fetch's out channel is already a typed bar.
	Fetch func(ctx context.Context, config map[string]string, out chan<- any, summary chan<- data.RunSummary)
}

// Registry is a small in-process name -> Provider lookup, mirroring the
// teacher's provider.Map used by cmd/run.go.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds p under its own Name().
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns every registered provider name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
