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
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/posguard/posguard/model"
)

// targetTableDDL is the output-table contract. Monetary deltas are split into
// an integrated and a manual column group; exactly one group is populated per
// row so table-wide sums never double count.
const targetTableDDL = `
	CREATE TABLE IF NOT EXISTS posguard.reconciliation (
		id SERIAL PRIMARY KEY,
		row_key TEXT NOT NULL,
		provider TEXT NOT NULL,
		integration_type TEXT NOT NULL,
		integration_group TEXT NOT NULL,
		sales_transaction_id BIGINT,
		order_key TEXT,
		sale_key TEXT,
		country_id TEXT,
		country_name TEXT,
		ownerships TEXT,
		store_area TEXT,
		location_id TEXT,
		location_name TEXT,
		region TEXT,
		channel_name TEXT,
		subchannel_name TEXT,
		pos_register_number TEXT,
		gross_amount NUMERIC,
		business_date DATE,
		sales_date TIMESTAMP,
		credit_note_transaction_id BIGINT,
		credit_note_date TIMESTAMP,
		credit_note_gross NUMERIC,
		merchant_id TEXT,
		provider_status TEXT,
		provider_sub_status TEXT,
		provider_amount NUMERIC,
		provider_created_at TIMESTAMP,
		provider_updated_at TIMESTAMP,
		transaction_status TEXT NOT NULL,
		credit_note_status TEXT NOT NULL,
		cancellation_liability TEXT,
		concat_key TEXT,
		payment_value_integrated NUMERIC NOT NULL DEFAULT 0,
		payment_diff_integrated NUMERIC NOT NULL DEFAULT 0,
		cancelation_value_integrated NUMERIC NOT NULL DEFAULT 0,
		cancelation_diff_integrated NUMERIC NOT NULL DEFAULT 0,
		partial_cancelation_diff_integrated NUMERIC NOT NULL DEFAULT 0,
		refunded_value_integrated NUMERIC NOT NULL DEFAULT 0,
		refunded_diff_integrated NUMERIC NOT NULL DEFAULT 0,
		partial_refunded_value_integrated NUMERIC NOT NULL DEFAULT 0,
		partial_refunded_diff_integrated NUMERIC NOT NULL DEFAULT 0,
		payment_value_manual NUMERIC NOT NULL DEFAULT 0,
		payment_diff_manual NUMERIC NOT NULL DEFAULT 0,
		cancelation_value_manual NUMERIC NOT NULL DEFAULT 0,
		cancelation_diff_manual NUMERIC NOT NULL DEFAULT 0,
		partial_cancelation_diff_manual NUMERIC NOT NULL DEFAULT 0,
		refunded_value_manual NUMERIC NOT NULL DEFAULT 0,
		refunded_diff_manual NUMERIC NOT NULL DEFAULT 0,
		partial_refunded_value_manual NUMERIC NOT NULL DEFAULT 0,
		partial_refunded_diff_manual NUMERIC NOT NULL DEFAULT 0,
		currency_id TEXT,
		exchange_rate NUMERIC,
		reintegration_seconds BIGINT,
		reintegration_minutes BIGINT,
		provider_process_seconds BIGINT,
		reception_seconds BIGINT,
		transaction_seconds BIGINT,
		run_id TEXT NOT NULL,
		audited_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reconciliation_provider_date
		ON posguard.reconciliation (provider, business_date);
	CREATE INDEX IF NOT EXISTS idx_reconciliation_run
		ON posguard.reconciliation (run_id)
`

func (d Datasource) RecordRun(ctx context.Context, summary *model.RunSummary) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO posguard.reconciliation_runs (run_id, provider, status, window_from, window_to, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, summary.RunID, summary.Provider, summary.Status, summary.WindowFrom, summary.WindowTo, summary.StartedAt)
	return errors.Wrap(err, "recording reconciliation run")
}

func (d Datasource) UpdateRunStatus(ctx context.Context, runID, status string, rowsOut int) error {
	var completedAt sql.NullTime
	if status == model.StatusCompleted || status == model.StatusFailed {
		completedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE posguard.reconciliation_runs
		SET status = $2, rows_out = $3, completed_at = $4
		WHERE run_id = $1
	`, runID, status, rowsOut, completedAt)
	if err != nil {
		return errors.Wrap(err, "updating run status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating run status")
	}
	if affected == 0 {
		return errors.Errorf("run %s not found", runID)
	}
	return nil
}

func (d Datasource) GetRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	summary := model.RunSummary{}
	var completedAt sql.NullTime
	err := d.Conn.QueryRowContext(ctx, `
		SELECT run_id, provider, status, window_from, window_to, rows_out, started_at, completed_at
		FROM posguard.reconciliation_runs
		WHERE run_id = $1
	`, runID).Scan(&summary.RunID, &summary.Provider, &summary.Status, &summary.WindowFrom,
		&summary.WindowTo, &summary.RowsOut, &summary.StartedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Errorf("run %s not found", runID)
		}
		return nil, errors.Wrap(err, "retrieving run")
	}
	if completedAt.Valid {
		summary.CompletedAt = completedAt.Time
	}
	return &summary, nil
}

// ReplaceWindow deletes the provider's rows inside the business-date window
// and inserts the new rows in one transaction. Rerunning the same window
// converges to the same table state.
func (d Datasource) ReplaceWindow(ctx context.Context, provider string, from, to time.Time, rows []*model.ReconciliationRow) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning replace transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM posguard.reconciliation
		WHERE provider = $1 AND business_date BETWEEN $2 AND $3
	`, provider, from, to)
	if err != nil {
		return errors.Wrap(err, "deleting window rows")
	}

	stmt, err := tx.PrepareContext(ctx, insertRowSQL)
	if err != nil {
		return errors.Wrap(err, "preparing row insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, insertArgs(row)...); err != nil {
			return errors.Wrapf(err, "inserting row %s", row.RowKey)
		}
	}
	return errors.Wrap(tx.Commit(), "committing replace transaction")
}

const insertRowSQL = `
	INSERT INTO posguard.reconciliation (
		row_key, provider, integration_type, integration_group,
		sales_transaction_id, order_key, sale_key,
		country_id, country_name, ownerships, store_area, location_id, location_name, region,
		channel_name, subchannel_name, pos_register_number,
		gross_amount, business_date, sales_date,
		credit_note_transaction_id, credit_note_date, credit_note_gross,
		merchant_id, provider_status, provider_sub_status, provider_amount,
		provider_created_at, provider_updated_at,
		transaction_status, credit_note_status, cancellation_liability, concat_key,
		payment_value_integrated, payment_diff_integrated,
		cancelation_value_integrated, cancelation_diff_integrated, partial_cancelation_diff_integrated,
		refunded_value_integrated, refunded_diff_integrated,
		partial_refunded_value_integrated, partial_refunded_diff_integrated,
		payment_value_manual, payment_diff_manual,
		cancelation_value_manual, cancelation_diff_manual, partial_cancelation_diff_manual,
		refunded_value_manual, refunded_diff_manual,
		partial_refunded_value_manual, partial_refunded_diff_manual,
		currency_id, exchange_rate,
		reintegration_seconds, reintegration_minutes, provider_process_seconds,
		reception_seconds, transaction_seconds,
		run_id, audited_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
		$41, $42, $43, $44, $45, $46, $47, $48, $49, $50,
		$51, $52, $53, $54, $55, $56, $57, $58, $59, $60
	)
`

// insertArgs flattens a row into the insert parameter list. The delta set
// lands in the integrated column group only for key-matched rows; every other
// outcome books into the manual group.
func insertArgs(row *model.ReconciliationRow) []interface{} {
	zero := decimal.Zero
	integrated := [9]decimal.Decimal{zero, zero, zero, zero, zero, zero, zero, zero, zero}
	manual := integrated

	group := [9]decimal.Decimal{
		row.Deltas.PaymentValue, row.Deltas.PaymentDiff,
		row.Deltas.CancelationValue, row.Deltas.CancelationDiff, row.Deltas.PartialCancelDiff,
		row.Deltas.RefundedValue, row.Deltas.RefundedDiff,
		row.Deltas.PartialRefundedValue, row.Deltas.PartialRefundedDiff,
	}
	if row.IntegrationType == model.IntegrationIntegrated {
		integrated = group
	} else {
		manual = group
	}

	args := []interface{}{
		row.RowKey, row.Provider, string(row.IntegrationType), row.IntegrationType.Group(),
		row.SalesTransactionID, nullString(row.OrderKey), row.SaleKey,
		row.CountryID, row.CountryName, row.Ownerships, row.StoreArea, row.LocationID, row.LocationName, row.Region,
		row.ChannelName, row.SubchannelName, row.PosRegisterNumber,
		decimalOrNil(row.GrossAmount), row.BusinessDate, row.SalesDate,
		row.CreditNoteTransactionID, row.CreditNoteDate, decimalOrNil(row.CreditNoteGross),
		row.MerchantID, row.ProviderStatus, row.ProviderSubStatus, decimalOrNil(row.ProviderAmount),
		row.ProviderCreatedAt, row.ProviderUpdatedAt,
		row.TransactionStatus, row.CreditNoteStatus, row.CancellationLiability, row.ConcatKey,
	}
	for _, v := range integrated {
		args = append(args, v.String())
	}
	for _, v := range manual {
		args = append(args, v.String())
	}
	args = append(args,
		row.CurrencyID, decimalOrNil(row.ExchangeRate),
		row.ReintegrationSeconds, row.ReintegrationMinutes, row.ProviderProcessSecs,
		row.ReceptionSeconds, row.TransactionSeconds,
		row.RunID, row.AuditedAt,
	)
	return args
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
