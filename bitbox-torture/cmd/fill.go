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
	"os"
	"time"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	torture "github.com/pepyakin/bitbox-torture"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the database with random data under a hot/cold key mix.",
	Long: `
This command stresses the write path of the selected engine: it inserts keys
in batched transactions, reusing previously written keys with probability
1-cold, and prints per-batch commit latencies and occupancy. The key sequence
is deterministic, so repeated runs hit the same pages.
`,
	RunE: fill,
}

var (
	numItems  int64
	batchSize int64
	valueSize int
	coldProb  float64
)

func init() {
	RootCmd.AddCommand(fillCmd)
	fillCmd.Flags().Int64VarP(&numItems, "num", "n", 0, "Number of items to insert.")
	fillCmd.Flags().Int64Var(&batchSize, "batch-sz", 1000, "Items per transaction.")
	fillCmd.Flags().IntVar(&valueSize, "value-sz", 32, "Size of each value in bytes.")
	fillCmd.Flags().Float64Var(&coldProb, "cold", 0.3,
		"Probability that a draw produces a brand-new key instead of reusing one.")
	if err := fillCmd.MarkFlagRequired("num"); err != nil {
		panic(err)
	}
}

func fill(cmd *cobra.Command, args []string) error {
	opts := torture.FillOptions{
		Dir:       dbPath,
		Kind:      engineKind,
		NoSync:    yolo,
		Existing:  existingPolicy(),
		N:         numItems,
		BatchSize: batchSize,
		ValueSize: valueSize,
		Cold:      coldProb,
	}

	log.WithFields(log.Fields{
		"path":     dbPath,
		"kind":     engineKind,
		"items":    numItems,
		"batch-sz": batchSize,
		"value-sz": valueSize,
		"cold":     coldProb,
		"yolo":     yolo,
	}).Info("opening database")

	start := time.Now()
	if err := torture.Fill(opts, torture.NewProgressReporter(os.Stdout)); err != nil {
		return err
	}
	fmt.Printf("%s items written. Time taken: %s\n",
		humanize.Comma(numItems), time.Since(start).Round(time.Millisecond))
	return nil
}
