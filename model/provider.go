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

// Outcome is the provider-independent meaning of a provider status or
// sub-status. Vocabularies map raw provider strings onto these.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCharge
	OutcomeThirdPartyCharge
	OutcomeCancel
	OutcomePartialCancel
	OutcomeRefund
	OutcomePartialRefund
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCharge:
		return "charge"
	case OutcomeThirdPartyCharge:
		return "third_party_charge"
	case OutcomeCancel:
		return "cancel"
	case OutcomePartialCancel:
		return "partial_cancel"
	case OutcomeRefund:
		return "refund"
	case OutcomePartialRefund:
		return "partial_refund"
	default:
		return "unknown"
	}
}

// SettlementComponents are the signed per-event amounts carried by
// settlement-file providers. Charges are positive, cancellations and
// reimbursements negative or positive per the provider's file format.
type SettlementComponents struct {
	Sale                  decimal.Decimal
	SaleNoImpact          decimal.Decimal
	CancelTotal           decimal.Decimal
	CancelTotalNoImpact   decimal.Decimal
	CancelPartial         decimal.Decimal
	CancelPartialNoImpact decimal.Decimal
	Reimbursement         decimal.Decimal
	OtherAdjustments      decimal.Decimal
}

// CancelSum is the sum of the four cancellation components.
func (c *SettlementComponents) CancelSum() decimal.Decimal {
	return c.CancelTotal.Add(c.CancelTotalNoImpact).Add(c.CancelPartial).Add(c.CancelPartialNoImpact)
}

// HasNegativeCancel reports whether any cancellation component is negative,
// i.e. the event actually clawed money back.
func (c *SettlementComponents) HasNegativeCancel() bool {
	zero := decimal.Zero
	return c.CancelTotal.LessThan(zero) || c.CancelTotalNoImpact.LessThan(zero) ||
		c.CancelPartial.LessThan(zero) || c.CancelPartialNoImpact.LessThan(zero)
}

// ProviderRecord is one payment event from a provider stream, normalized at
// extraction. Components is nil for gateway providers; Amount, Captured and
// Refunded are zero for settlement-file providers.
type ProviderRecord struct {
	// OrderKey is the correlation key after provider-side normalization
	// (e.g. the short-reference prefix already stripped).
	OrderKey    string
	RawOrderKey string
	Status      string
	SubStatus   string
	// Amount is the order total charged; Captured and Refunded the amounts
	// actually moved afterwards.
	Amount     decimal.Decimal
	Captured   decimal.Decimal
	Refunded   decimal.Decimal
	Components *SettlementComponents
	CountryID  string
	StoreID    string
	// LocationAcronym is the store's three-character location code, joined
	// in at extraction from the merchant dimension.
	LocationAcronym string
	CreatedAt       time.Time
	// CreatedAtLocal and UpdatedAtLocal are the same instants shifted to the
	// store's timezone, used for business-date derivation.
	CreatedAtLocal time.Time
	UpdatedAt      time.Time
	UpdatedAtLocal time.Time
}

// StatusOutcome resolves the record's status through the vocabulary.
func (p *ProviderRecord) StatusOutcome(v *Vocabulary) Outcome {
	return v.Outcomes[p.Status]
}

// SubOutcome resolves the record's sub-status through the vocabulary.
func (p *ProviderRecord) SubOutcome(v *Vocabulary) Outcome {
	return v.SubOutcomes[p.SubStatus]
}

// BusinessDate is the local calendar date the event is reconciled under.
// Settlement vocabularies date events by creation, gateways by last update.
func (p *ProviderRecord) BusinessDate(v *Vocabulary) time.Time {
	t := p.CreatedAtLocal
	if v.DedupeByUpdatedAt {
		t = p.UpdatedAtLocal
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Fingerprint builds the fallback match key for a provider event: local
// business date, location acronym and the order amount rounded to the
// vocabulary's scale.
func (p *ProviderRecord) Fingerprint(v *Vocabulary) string {
	return p.BusinessDate(v).Format("2006-01-02") + p.LocationAcronym + p.Amount.Round(v.FingerprintScale).StringFixed(v.FingerprintScale)
}

// ProcessingTime is the wall-clock time between the provider creating and
// last updating the event.
func (p *ProviderRecord) ProcessingTime() time.Duration {
	return p.UpdatedAt.Sub(p.CreatedAt)
}

// Vocabulary describes how a provider stream is interpreted: which raw status
// strings mean what, how fingerprints are built, and whether the stream needs
// deduplication before matching.
type Vocabulary struct {
	// Provider is the brand name used in output rows and run logs.
	Provider string
	// Channel is the sales channel the provider's orders arrive through.
	Channel string
	// Outcomes maps raw provider status strings to outcomes; SubOutcomes
	// maps sub-status strings. Unmapped strings resolve to OutcomeUnknown.
	Outcomes    map[string]Outcome
	SubOutcomes map[string]Outcome
	// FingerprintScale is the decimal scale amounts are rounded to when
	// building fallback match keys.
	FingerprintScale int32
	// DedupeByUpdatedAt marks streams that replay events and must be reduced
	// to the latest update per order before matching.
	DedupeByUpdatedAt bool
	// HasComponents marks settlement-file streams carrying signed component
	// amounts instead of amount/captured/refunded.
	HasComponents bool
}

// IFoodVocabulary interprets iFood settlement files. One row per settlement
// event, signed components, dates by creation.
func IFoodVocabulary() *Vocabulary {
	return &Vocabulary{
		Provider: "IFOOD",
		Channel:  "IFOOD",
		Outcomes: map[string]Outcome{
			"Venda":                     OutcomeCharge,
			"Ocorrencia Venda":          OutcomeThirdPartyCharge,
			"Cancelamento Total":        OutcomeCancel,
			"Cancelamento Parcial":      OutcomePartialCancel,
			"Ressarcimento/Indenização": OutcomeRefund,
		},
		SubOutcomes:      map[string]Outcome{},
		FingerprintScale: 2,
		HasComponents:    true,
	}
}

// YunoVocabulary interprets Yuno gateway payments. Events replay on update,
// amounts come as amount/captured/refunded, dates by last update.
func YunoVocabulary() *Vocabulary {
	return &Vocabulary{
		Provider: "YUNO",
		Channel:  "YUNO",
		Outcomes: map[string]Outcome{
			"SUCCEEDED": OutcomeCharge,
			"REFUNDED":  OutcomeRefund,
		},
		SubOutcomes: map[string]Outcome{
			"PARTIALLY_REFUNDED": OutcomePartialRefund,
		},
		FingerprintScale:  0,
		DedupeByUpdatedAt: true,
	}
}
