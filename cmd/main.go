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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	posguard "github.com/posguard/posguard"
	"github.com/posguard/posguard/config"
	"github.com/posguard/posguard/database"
	"github.com/posguard/posguard/internal/notification"
)

// CLI wraps the root cobra command.
type CLI struct {
	cmd *cobra.Command
}

// appInstance holds the service instance and its configuration for use by
// the subcommands.
type appInstance struct {
	guard *posguard.Posguard
	cnf   *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service before any
// subcommand executes.
func preRun(app *appInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		guard, err := setupPosguard(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.guard = guard
		app.cnf = cnf
		return nil
	}
}

func setupPosguard(cfg *config.Configuration) (*posguard.Posguard, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	guard, err := posguard.NewPosguard(db)
	if err != nil {
		return nil, fmt.Errorf("error creating posguard: %v", err)
	}
	return guard, nil
}

// NewCLI creates the command-line interface for the reconciliation service.
func NewCLI() *CLI {
	var configFile string
	app := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "posguard",
		Short: "POS vs payment-provider reconciliation",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./posguard.json", "Configuration file")
	rootCmd.PersistentPreRunE = preRun(app, &configFile)

	rootCmd.AddCommand(runCommands(app))
	rootCmd.AddCommand(workerCommands(app))
	rootCmd.AddCommand(initTableCommands(app))

	return &CLI{cmd: rootCmd}
}

func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
