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

package database

import (
	"database/sql"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/posguard/posguard/config"
)

// Package-level singleton; one warehouse connection pool per process.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	return GetDBConnection(configuration)
}

// GetDBConnection provides a global access point to the instance and
// initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// ConnectDB opens the warehouse connection, retrying the initial ping with
// exponential backoff so a restarting database does not fail the run, and
// ensures the bookkeeping tables exist.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	err = backoff.Retry(func() error {
		if pingErr := db.Ping(); pingErr != nil {
			logrus.WithError(pingErr).Warn("database not reachable, retrying")
			return pingErr
		}
		return nil
	}, policy)
	if err != nil {
		return nil, errors.Wrap(err, "pinging database")
	}

	if err := createRunTable(db); err != nil {
		return nil, err
	}
	if err := createReconciliationTable(db); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureTables creates the run-bookkeeping and target tables when missing.
// ConnectDB already runs this; the init-table command exposes it directly.
func (d Datasource) EnsureTables() error {
	if err := createRunTable(d.Conn); err != nil {
		return err
	}
	return createReconciliationTable(d.Conn)
}

func createRunTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS posguard.reconciliation_runs (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			provider TEXT NOT NULL,
			status TEXT NOT NULL,
			window_from DATE NOT NULL,
			window_to DATE NOT NULL,
			rows_out INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP
		)
	`)
	return errors.Wrap(err, "creating reconciliation_runs table")
}

func createReconciliationTable(db *sql.DB) error {
	_, err := db.Exec(targetTableDDL)
	return errors.Wrap(err, "creating reconciliation table")
}
