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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chartvault/mdcore/data"
)

const insecureDefaultPassphrase = "mdengine-dev-insecure-default"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdengine",
	Short: "mdengine serves and maintains a partitioned historical market-data archive",
	Long: `mdengine is a command line utility for building, querying, and grading a
partitioned archive of daily/minute/tick equity bars and options chains,
including an implied-volatility and Greeks pipeline. Each (category, symbol,
time bucket) lives in its own embedded sqlite partition; mdengine resolves,
attaches, and queries whichever partitions a request spans, then packages
the result as a versioned JSON envelope.

mdengine does not itself speak any vendor's wire protocol: data arrives
through a small Provider interface, and mdengine validates, persists, and
serves it.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main() exactly once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(data.KindOf(err).ExitCode())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mdengine.toml)")
	rootCmd.PersistentFlags().String("data-root", "", "dataset root directory (overrides MDENGINE_DATA_ROOT)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	if err := viper.BindPFlag("data_root", rootCmd.PersistentFlags().Lookup("data-root")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for data-root failed")
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for verbose failed")
	}
}

// initConfig reads in config file and ENV variables if set, matching the
// teacher's cobra.OnInitialize wiring in its own root command.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".mdengine")
	}

	viper.SetEnvPrefix("mdengine")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("using config file")
	}

	if viper.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// resolveDataRoot resolves the dataset root directory per §6: flag >
// MDENGINE_DATA_ROOT > $HOME/.mdengine/data.
func resolveDataRoot() string {
	if v := viper.GetString("data_root"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mdengine/data"
	}
	return filepath.Join(home, ".mdengine", "data")
}

// resolveDBPassphrase resolves MDENGINE_DB_PASSPHRASE, warning loudly
// when the documented-insecure default is in effect. No component in
// this engine currently encrypts partition files with it
// (mattn/go-sqlite3 carries no SEE-style encryption extension); it is
// threaded through configuration now so a future at-rest encryption
// layer has a stable source to read from, per an Open Question decision
// recorded in DESIGN.md.
func resolveDBPassphrase() string {
	if v := viper.GetString("db_passphrase"); v != "" {
		return v
	}
	log.Warn().Msg("MDENGINE_DB_PASSPHRASE not set, using documented-insecure default")
	return insecureDefaultPassphrase
}
