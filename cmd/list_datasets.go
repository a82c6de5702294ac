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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chartvault/mdcore/envelope"
)

// datasetDescriptor is one entry of the list-datasets envelope payload.
type datasetDescriptor struct {
	Provider    string `json:"provider"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Granularity string `json:"granularity"`
}

var listDatasetsCmd = &cobra.Command{
	Use:   "list-datasets",
	Short: "List every dataset exposed by registered providers",
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := bootstrap()
		if err != nil {
			log.Fatal().Err(err).Msg("could not start engine")
		}
		defer eng.Close()

		var out []datasetDescriptor
		for _, name := range eng.registry.Names() {
			p, _ := eng.registry.Get(name)
			for _, ds := range p.Datasets() {
				out = append(out, datasetDescriptor{
					Provider:    name,
					Name:        ds.Name,
					Description: ds.Description,
					Category:    string(ds.Category),
					Granularity: string(ds.Granularity),
				})
			}
		}

		env := envelope.Success(out, envelope.NewMeta(len(out), 0, 0, 0, envelope.CacheCold, envelope.SourceStub))
		if err := envelope.Write(os.Stdout, env); err != nil {
			log.Fatal().Err(err).Msg("could not write envelope")
		}
	},
}

func init() {
	rootCmd.AddCommand(listDatasetsCmd)
}
