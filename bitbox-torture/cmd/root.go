/*
 * Copyright 2024 the bitbox-torture authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	torture "github.com/pepyakin/bitbox-torture"
)

const defaultPath = "/mnt/kv-torture"

var (
	dbPath    string
	kindName  string
	overwrite bool
	cont      bool
	yolo      bool

	engineKind torture.Kind
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:               "bitbox-torture",
	Short:             "Torture tools for key/value storage engines.",
	PersistentPreRunE: validateRootCmdArgs,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dbPath, "path", defaultPath,
		"Directory where the database lives.")
	RootCmd.PersistentFlags().StringVar(&kindName, "kind", string(torture.KindBolt),
		"Storage engine to torture (bolt or badger).")
	RootCmd.PersistentFlags().BoolVarP(&overwrite, "yes", "y", false,
		"Overwrite an existing database.")
	RootCmd.PersistentFlags().BoolVar(&cont, "cont", false,
		"Continue filling an existing database instead of overwriting it.")
	RootCmd.PersistentFlags().BoolVar(&yolo, "yolo", false,
		"Do not sync after each commit. One final flush is issued at run end.")
}

func validateRootCmdArgs(cmd *cobra.Command, args []string) error {
	if strings.HasPrefix(cmd.Use, "help ") { // No need to validate if it is help
		return nil
	}
	var err error
	if engineKind, err = torture.ParseKind(kindName); err != nil {
		return err
	}
	if overwrite && cont {
		return errors.New("-y and --cont are mutually exclusive")
	}
	return nil
}

// existingPolicy resolves the preflight policy from the global flags.
func existingPolicy() torture.ExistingPolicy {
	switch {
	case overwrite:
		return torture.Overwrite
	case cont:
		return torture.Continue
	default:
		return torture.Abort
	}
}
