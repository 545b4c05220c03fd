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
	"fmt"

	"github.com/spf13/cobra"

	torture "github.com/pepyakin/bitbox-torture"
)

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Print the occupancy snapshot of an existing database.",
	Long: `
This command opens the database read-only and prints the backend's occupancy
counters. It never creates or mutates state.
`,
	RunE: stat,
}

func init() {
	RootCmd.AddCommand(statCmd)
}

func stat(cmd *cobra.Command, args []string) error {
	st, err := torture.StatDatabase(dbPath, engineKind)
	if err != nil {
		return err
	}
	fmt.Println(st.String())
	return nil
}
