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
	"context"
	"time"

	"github.com/posguard/posguard/model"
)

// IDataSource defines the interface for warehouse operations, grouping
// related functionalities.
type IDataSource interface {
	sales          // Sales-ledger reads
	providers      // Provider-event reads
	referenceData  // Currency and country reference reads
	reconciliation // Target-table writes and run bookkeeping
}

// sales defines methods for reading the POS sales ledger.
type sales interface {
	// GetSaleRecords retrieves sales of the channel within the date range,
	// both sales and credit notes, with the gross amount already rounded.
	GetSaleRecords(ctx context.Context, channel string, from, to time.Time) ([]*model.SaleRecord, error)
}

// providers defines methods for reading provider payment events.
type providers interface {
	GetProviderRecords(ctx context.Context, provider string, from, to time.Time) ([]*model.ProviderRecord, error)
}

// referenceData defines methods for reading reference data.
type referenceData interface {
	// GetCurrencyRates retrieves the monthly rate snapshot effective on the
	// processing date.
	GetCurrencyRates(ctx context.Context, effective time.Time) ([]model.CurrencyRate, error)
	GetCurrencyByCountry(ctx context.Context) (map[string]string, error)
}

// reconciliation defines methods for the output side of a run.
type reconciliation interface {
	RecordRun(ctx context.Context, summary *model.RunSummary) error
	UpdateRunStatus(ctx context.Context, runID, status string, rowsOut int) error
	GetRun(ctx context.Context, runID string) (*model.RunSummary, error)
	// ReplaceWindow deletes the provider's rows inside the window and
	// inserts the new rows in one transaction, keeping reruns idempotent.
	ReplaceWindow(ctx context.Context, provider string, from, to time.Time, rows []*model.ReconciliationRow) error
}
