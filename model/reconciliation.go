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

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntegrationType is the outcome bucket a row belongs to. The four values
// partition every sale and provider event: each record lands in exactly one.
type IntegrationType string

const (
	IntegrationIntegrated          IntegrationType = "Integrated"
	IntegrationManualAssociated    IntegrationType = "Manually associated"
	IntegrationManualUnassociated  IntegrationType = "Manually unassociated"
	IntegrationProviderWithoutSale IntegrationType = "Provider without sale"
)

// Group collapses the four buckets into the two-valued integration group
// used for reporting rollups.
func (t IntegrationType) Group() string {
	switch t {
	case IntegrationIntegrated, IntegrationManualAssociated:
		return "Integrated"
	default:
		return "Manual"
	}
}

// Transaction status labels emitted on output rows.
const (
	StatusCharged            = "Charged"
	StatusChargedThirdParty  = "Charged by third party"
	StatusCompensated        = "Compensated"
	StatusCompensatedPartial = "Compensated partially"
	StatusCancelled          = "Cancelled"
	StatusCancelledPartial   = "Cancelled partially"
	StatusNotFound           = "Not found"
)

// Credit-note status labels.
const (
	CreditNoteDuplicate     = "Duplicate credit note"
	CreditNoteApplied       = "Credit note applied"
	CreditNoteNotApplicable = "Not applicable"
)

// Reconciliation run lifecycle states.
const (
	StatusStarted    = "started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// DeltaSet holds the monetary deltas computed for one reconciled pair or
// orphan event. Exactly the categories implied by the provider outcome are
// non-zero; the rest stay at zero so column sums aggregate cleanly.
type DeltaSet struct {
	PaymentValue         decimal.Decimal
	PaymentDiff          decimal.Decimal
	CancelationValue     decimal.Decimal
	CancelationDiff      decimal.Decimal
	PartialCancelDiff    decimal.Decimal
	RefundedValue        decimal.Decimal
	RefundedDiff         decimal.Decimal
	PartialRefundedValue decimal.Decimal
	PartialRefundedDiff  decimal.Decimal
}

// IsZero reports whether every delta in the set is zero.
func (d *DeltaSet) IsZero() bool {
	return d.PaymentValue.IsZero() && d.PaymentDiff.IsZero() &&
		d.CancelationValue.IsZero() && d.CancelationDiff.IsZero() &&
		d.PartialCancelDiff.IsZero() &&
		d.RefundedValue.IsZero() && d.RefundedDiff.IsZero() &&
		d.PartialRefundedValue.IsZero() && d.PartialRefundedDiff.IsZero()
}

// ReconciliationRow is one output record of a run: a matched sale/provider
// pair, an unmatched sale, or an orphan provider event. Pointer fields are
// nil when the corresponding side or reference data is absent.
type ReconciliationRow struct {
	// RowKey is the row's primary key within the target table, derived per
	// vocabulary from the order key and, for gateways, the sale identity.
	RowKey string

	Provider        string
	IntegrationType IntegrationType

	// Sale side; nil-safe fields when IntegrationType is ProviderWithoutSale.
	SalesTransactionID *int64
	OrderKey           string
	SaleKey            *string
	CountryID          *string
	CountryName        *string
	Ownerships         *string
	StoreArea          *string
	LocationID         *string
	LocationName       *string
	Region             *string
	ChannelName        *string
	SubchannelName     *string
	PosRegisterNumber  *string
	GrossAmount        *decimal.Decimal
	BusinessDate       *time.Time
	SalesDate          *time.Time

	// Credit-note side, populated when a canonical credit note exists for
	// the order key.
	CreditNoteTransactionID *int64
	CreditNoteDate          *time.Time
	CreditNoteGross         *decimal.Decimal

	// Provider side.
	MerchantID        *string
	ProviderStatus    *string
	ProviderSubStatus *string
	ProviderAmount    *decimal.Decimal
	ProviderCreatedAt *time.Time
	ProviderUpdatedAt *time.Time

	TransactionStatus string
	CreditNoteStatus  string
	// CancellationLiability names who absorbs a cancellation: the provider
	// brand for refunds, the merchant for cancels. Settlement streams only.
	CancellationLiability *string
	// ConcatKey is the fallback fingerprint carried by rows in the manual
	// integration group; nil on key-matched rows.
	ConcatKey *string

	Deltas DeltaSet

	// Monthly FX rate effective for the row's currency; nil when the
	// reference data has no rate for the month.
	CurrencyID   *string
	ExchangeRate *decimal.Decimal

	// Timings (supplemental diagnostics).
	ReintegrationSeconds *int64
	ReintegrationMinutes *int64
	ProviderProcessSecs  *int64
	ReceptionSeconds     *int64
	TransactionSeconds   *int64

	RunID     string
	AuditedAt time.Time
}

// RunParams are the caller-supplied parameters of one reconciliation run.
type RunParams struct {
	Provider string `json:"provider"`
	// Mode selects the window resolution strategy.
	Mode string `json:"mode"`
	// From and To bound an explicit window, yyyy-MM-dd. Ignored unless Mode
	// is the explicit-window mode.
	From string `json:"from"`
	To   string `json:"to"`
	// ReferenceDate overrides "today" for window resolution, yyyy-MM-dd.
	ReferenceDate string `json:"reference_date"`
	RunID         string `json:"run_id"`
}

// RunSummary reports what a completed run did.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Provider    string    `json:"provider"`
	WindowFrom  time.Time `json:"window_from"`
	WindowTo    time.Time `json:"window_to"`
	Status      string    `json:"status"`
	Skipped     bool      `json:"skipped"`
	SalesIn     int       `json:"sales_in"`
	ProvidersIn int       `json:"providers_in"`
	RowsOut     int       `json:"rows_out"`
	Integrated  int       `json:"integrated"`
	ManualAssoc int       `json:"manually_associated"`
	ManualUnass int       `json:"manually_unassociated"`
	Orphans     int       `json:"provider_without_sale"`
	Duplicates  int       `json:"duplicate_credit_notes"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// CurrencyRate is one monthly FX snapshot row from the reference data.
type CurrencyRate struct {
	CurrencyID string
	YearMonth  string
	Rate       decimal.Decimal
}
