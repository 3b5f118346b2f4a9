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

package posguard

import (
	"strings"
	"time"

	"github.com/wacul/ptr"

	"github.com/posguard/posguard/model"
)

// TransactionStatus labels what happened to a transaction, derived from the
// provider outcome crossed with whether a sale was found. Settlement streams
// only trust labels backed by a sale; gateway refund events without a sale
// read as cancellations.
func TransactionStatus(hasSale bool, p *model.ProviderRecord, vocab *model.Vocabulary) string {
	if p == nil {
		return model.StatusNotFound
	}
	status := p.StatusOutcome(vocab)
	sub := p.SubOutcome(vocab)

	if vocab.HasComponents {
		if !hasSale {
			return model.StatusNotFound
		}
		switch status {
		case model.OutcomeRefund:
			if p.Captured.LessThan(p.Amount) {
				return model.StatusCompensatedPartial
			}
			return model.StatusCompensated
		case model.OutcomePartialCancel:
			return model.StatusCancelledPartial
		case model.OutcomeCancel:
			return model.StatusCancelled
		case model.OutcomeCharge:
			return model.StatusCharged
		case model.OutcomeThirdPartyCharge:
			return model.StatusChargedThirdParty
		}
		return model.StatusNotFound
	}

	switch {
	case status == model.OutcomeRefund && hasSale:
		return model.StatusCompensated
	case status == model.OutcomeRefund:
		return model.StatusCancelled
	case sub == model.OutcomePartialRefund && hasSale:
		return model.StatusCompensatedPartial
	case sub == model.OutcomePartialRefund:
		return model.StatusCancelledPartial
	case status == model.OutcomeCharge && hasSale:
		return model.StatusCharged
	}
	return model.StatusNotFound
}

// CreditNoteStatus labels the credit-note situation of an order key.
func CreditNoteStatus(orderKey string, notes *CreditNoteSet) string {
	if notes == nil || orderKey == "" {
		return model.CreditNoteNotApplicable
	}
	if notes.IsDuplicated(orderKey) {
		return model.CreditNoteDuplicate
	}
	if _, ok := notes.Canonical[orderKey]; ok {
		return model.CreditNoteApplied
	}
	return model.CreditNoteNotApplicable
}

// CancellationLiability names who absorbs a cancellation. Refunds fall on the
// provider, cancellations on the merchant. Only settlement vocabularies carry
// the distinction; gateway events return nil.
func CancellationLiability(p *model.ProviderRecord, vocab *model.Vocabulary) *string {
	if !vocab.HasComponents {
		return nil
	}
	switch p.StatusOutcome(vocab) {
	case model.OutcomeRefund:
		return ptr.String(vocab.Provider)
	case model.OutcomeCancel, model.OutcomePartialCancel:
		return ptr.String("AD")
	}
	return nil
}

// Classifier assembles output rows from a match result, stamping each with
// its outcome labels, deltas and audit identity.
type Classifier struct {
	Vocab     *model.Vocabulary
	Notes     *CreditNoteSet
	RunID     string
	AuditedAt time.Time
}

// Rows builds one output row per matched pair, unassociated sale and orphan
// provider event. A sale with several settlement events yields one row per
// event.
func (c *Classifier) Rows(res *MatchResult) []*model.ReconciliationRow {
	rows := make([]*model.ReconciliationRow, 0,
		len(res.Integrated)+len(res.ManuallyAssociated)+len(res.UnassociatedSales)+len(res.OrphanProviders))

	for _, pair := range res.Integrated {
		rows = append(rows, c.pairRow(pair, model.IntegrationIntegrated))
	}
	for _, pair := range res.ManuallyAssociated {
		rows = append(rows, c.pairRow(pair, model.IntegrationManualAssociated))
	}
	for _, s := range res.UnassociatedSales {
		rows = append(rows, c.saleRow(s))
	}
	for _, p := range res.OrphanProviders {
		rows = append(rows, c.orphanRow(p))
	}
	return rows
}

func (c *Classifier) pairRow(pair MatchedPair, it model.IntegrationType) *model.ReconciliationRow {
	row := c.saleRow(pair.Sale)
	row.IntegrationType = it
	if it == model.IntegrationIntegrated {
		// Key-matched rows never touched the fallback fingerprint.
		row.ConcatKey = nil
	}
	p := pair.Provider

	row.MerchantID = ptr.String(p.StoreID)
	row.ProviderStatus = ptr.String(p.Status)
	if p.SubStatus != "" {
		row.ProviderSubStatus = ptr.String(p.SubStatus)
	}
	amount := p.Amount
	row.ProviderAmount = &amount
	created := p.CreatedAt
	updated := p.UpdatedAt
	row.ProviderCreatedAt = &created
	row.ProviderUpdatedAt = &updated

	row.TransactionStatus = TransactionStatus(true, p, c.Vocab)
	row.CancellationLiability = CancellationLiability(p, c.Vocab)
	row.Deltas = ComputeDeltas(pair.Sale, p, c.Vocab)

	row.ProviderProcessSecs = ptr.Int64(int64(p.ProcessingTime() / time.Second))
	receivedFrom := p.CreatedAtLocal
	if c.Vocab.DedupeByUpdatedAt {
		receivedFrom = p.UpdatedAtLocal
	}
	row.ReceptionSeconds = ptr.Int64(int64(pair.Sale.StartTime.Sub(receivedFrom) / time.Second))

	row.RowKey = c.rowKey(pair.Sale, p)
	return row
}

func (c *Classifier) saleRow(s *model.SaleRecord) *model.ReconciliationRow {
	row := &model.ReconciliationRow{
		Provider:          c.Vocab.Provider,
		IntegrationType:   model.IntegrationManualUnassociated,
		OrderKey:          s.OrderKey,
		TransactionStatus: model.StatusNotFound,
		CreditNoteStatus:  CreditNoteStatus(s.OrderKey, c.Notes),
		RunID:             c.RunID,
		AuditedAt:         c.AuditedAt,
	}

	row.SalesTransactionID = ptr.Int64(s.SalesTransactionID)
	row.SaleKey = ptr.String(s.SaleKey)
	row.CountryID = ptr.String(s.CountryID)
	row.CountryName = ptr.String(s.CountryName)
	row.Ownerships = ptr.String(s.Ownerships)
	row.StoreArea = ptr.String(s.StoreArea)
	row.LocationID = ptr.String(s.LocationID)
	row.LocationName = ptr.String(s.LocationName)
	row.Region = ptr.String(s.RegionKey())
	row.ChannelName = ptr.String(s.ChannelName)
	row.SubchannelName = ptr.String(s.SubchannelName)
	row.PosRegisterNumber = ptr.String(s.PosRegisterNumber())
	gross := s.GrossAmount
	row.GrossAmount = &gross
	business := s.BusinessDate
	salesDate := s.SalesDate
	row.BusinessDate = &business
	row.SalesDate = &salesDate
	row.TransactionSeconds = ptr.Int64(s.TransactionSeconds())
	row.ConcatKey = ptr.String(s.Fingerprint(c.Vocab.FingerprintScale))

	if c.Notes != nil {
		if nc, ok := c.Notes.Canonical[s.OrderKey]; ok {
			row.CreditNoteTransactionID = ptr.Int64(nc.SalesTransactionID)
			ncDate := nc.SalesDate
			ncGross := nc.GrossAmount
			row.CreditNoteDate = &ncDate
			row.CreditNoteGross = &ncGross
			reintegration := nc.EndTime.Sub(s.EndTime)
			row.ReintegrationSeconds = ptr.Int64(int64(reintegration / time.Second))
			row.ReintegrationMinutes = ptr.Int64(int64(reintegration / time.Minute))
		}
	}

	row.RowKey = c.rowKey(s, nil)
	return row
}

func (c *Classifier) orphanRow(p *model.ProviderRecord) *model.ReconciliationRow {
	row := &model.ReconciliationRow{
		Provider:          c.Vocab.Provider,
		IntegrationType:   model.IntegrationProviderWithoutSale,
		OrderKey:          p.OrderKey,
		TransactionStatus: TransactionStatus(false, p, c.Vocab),
		CreditNoteStatus:  model.CreditNoteNotApplicable,
		RunID:             c.RunID,
		AuditedAt:         c.AuditedAt,
	}

	row.MerchantID = ptr.String(p.StoreID)
	row.ProviderStatus = ptr.String(p.Status)
	if p.SubStatus != "" {
		row.ProviderSubStatus = ptr.String(p.SubStatus)
	}
	amount := p.Amount
	row.ProviderAmount = &amount
	created := p.CreatedAt
	updated := p.UpdatedAt
	row.ProviderCreatedAt = &created
	row.ProviderUpdatedAt = &updated
	row.CountryID = ptr.String(p.CountryID)
	if p.LocationAcronym != "" {
		row.LocationName = ptr.String(p.LocationAcronym)
	}
	// The provider timestamp anchors the row in a window; without it the row
	// could never be priced or replaced.
	business := p.BusinessDate(c.Vocab)
	row.BusinessDate = &business
	row.ConcatKey = ptr.String(p.Fingerprint(c.Vocab))

	row.CancellationLiability = CancellationLiability(p, c.Vocab)
	row.Deltas = ComputeDeltas(nil, p, c.Vocab)
	row.ProviderProcessSecs = ptr.Int64(int64(p.ProcessingTime() / time.Second))

	row.RowKey = c.rowKey(nil, p)
	return row
}

// rowKey derives the row's primary key. Settlement streams key rows by the
// provider order key; gateway streams compose date, order key and sale key
// with zero placeholders so unmatched rows still key uniquely.
func (c *Classifier) rowKey(s *model.SaleRecord, p *model.ProviderRecord) string {
	orderKey := "0"
	switch {
	case s != nil && s.OrderKey != "":
		orderKey = s.OrderKey
	case p != nil && p.OrderKey != "":
		orderKey = p.OrderKey
	}

	if c.Vocab.HasComponents {
		return orderKey
	}

	date := "0"
	saleKey := "0"
	if s != nil {
		date = s.BusinessDate.Format("2006-01-02")
		if s.SaleKey != "" {
			saleKey = s.SaleKey
		}
	} else if p != nil {
		date = p.BusinessDate(c.Vocab).Format("2006-01-02")
	}
	return strings.Join([]string{date, orderKey, saleKey}, "-")
}
