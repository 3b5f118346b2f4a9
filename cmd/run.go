/*
Copyright 2025 Posguard Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/posguard/posguard/database"
	"github.com/posguard/posguard/model"
)

// runCommands defines the "run" command, executing one reconciliation run
// from the command line.
func runCommands(app *appInstance) *cobra.Command {
	var params model.RunParams

	cmd := &cobra.Command{
		Use:   "run",
		Short: "execute a reconciliation run",
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := app.guard.Reconcile(context.Background(), params)
			if err != nil {
				log.Fatalf("reconciliation failed: %v", err)
			}
			if summary.Skipped {
				log.Println("nothing scheduled for this date")
				return
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				log.Fatal(err)
			}
		},
	}

	cmd.Flags().StringVar(&params.Provider, "provider", "", "provider to reconcile (IFOOD, YUNO)")
	cmd.Flags().StringVar(&params.Mode, "mode", "DEFAULT", "window mode: DEFAULT, PREVIOUS_MONTH, CURRENT_MONTH, WINDOW")
	cmd.Flags().StringVar(&params.From, "from", "", "window start, yyyy-MM-dd (WINDOW mode)")
	cmd.Flags().StringVar(&params.To, "to", "", "window end, yyyy-MM-dd (WINDOW mode)")
	cmd.Flags().StringVar(&params.ReferenceDate, "reference-date", "", "override today for window resolution, yyyy-MM-dd")
	cmd.Flags().StringVar(&params.RunID, "run-id", "", "override the generated run id")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

// initTableCommands defines the "init-table" command, creating the target and
// bookkeeping tables without running a reconciliation.
func initTableCommands(app *appInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "init-table",
		Short: "create the reconciliation tables",
		Run: func(cmd *cobra.Command, args []string) {
			ds, err := database.GetDBConnection(app.cnf)
			if err != nil {
				log.Fatalf("connecting to warehouse: %v", err)
			}
			if err := ds.EnsureTables(); err != nil {
				log.Fatalf("creating tables: %v", err)
			}
			log.Println("reconciliation tables ready")
		},
	}
}
