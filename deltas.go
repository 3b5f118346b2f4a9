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
	"github.com/shopspring/decimal"

	"github.com/posguard/posguard/model"
)

// ComputeDeltas derives the monetary deltas for one provider event and, when
// present, its matched sale. Value categories describe what the provider
// moved and are computed even for orphan events; diff categories compare
// against the POS gross amount and stay zero without a sale.
//
// The caller places the resulting set into the integrated or manual column
// group of the output row; the formulas themselves do not depend on the
// match tier.
func ComputeDeltas(sale *model.SaleRecord, p *model.ProviderRecord, vocab *model.Vocabulary) model.DeltaSet {
	if vocab.HasComponents {
		return settlementDeltas(sale, p, vocab)
	}
	return gatewayDeltas(sale, p, vocab)
}

// settlementDeltas computes from signed settlement components. A
// reimbursement event nets the cancellation components into the charge so the
// charge column reflects what the provider actually kept.
func settlementDeltas(sale *model.SaleRecord, p *model.ProviderRecord, vocab *model.Vocabulary) model.DeltaSet {
	var d model.DeltaSet
	c := p.Components
	if c == nil {
		return d
	}
	grossCharge := c.Sale.Add(c.SaleNoImpact)

	if c.Reimbursement.IsPositive() {
		d.PaymentValue = c.CancelSum().Add(grossCharge)
	} else {
		d.PaymentValue = grossCharge
	}

	if c.HasNegativeCancel() && c.Reimbursement.IsZero() {
		d.CancelationValue = c.CancelSum()
	}

	switch {
	case c.Reimbursement.IsPositive() && c.OtherAdjustments.IsPositive():
		d.RefundedValue = c.Reimbursement.Add(c.OtherAdjustments)
	case c.Reimbursement.IsPositive():
		d.RefundedValue = c.Reimbursement
	case c.OtherAdjustments.IsPositive():
		d.RefundedValue = c.OtherAdjustments
	}

	if sale == nil {
		return d
	}
	gross := sale.GrossAmount
	status := p.StatusOutcome(vocab)

	switch {
	case status == model.OutcomeCharge, status == model.OutcomeThirdPartyCharge, status == model.OutcomePartialCancel:
		d.PaymentDiff = gross.Sub(p.Amount)
	case status == model.OutcomeRefund && p.Captured.LessThan(p.Amount):
		d.PaymentDiff = gross.Sub(p.Amount)
	}

	if status == model.OutcomeCancel {
		d.CancelationDiff = gross.Sub(p.Captured)
	}
	if status == model.OutcomePartialCancel {
		d.PartialCancelDiff = gross.Sub(p.Captured)
	}
	if status == model.OutcomeRefund && p.Captured.LessThan(p.Amount) {
		d.PartialRefundedDiff = gross.Sub(p.Refunded)
	}
	return d
}

// gatewayDeltas computes from the amount/captured/refunded triple. Orphan
// refund events book the refunded amount as a cancellation: money went back
// without a sale on record to compensate.
func gatewayDeltas(sale *model.SaleRecord, p *model.ProviderRecord, vocab *model.Vocabulary) model.DeltaSet {
	var d model.DeltaSet
	status := p.StatusOutcome(vocab)
	sub := p.SubOutcome(vocab)

	switch {
	case sub == model.OutcomePartialRefund:
		d.PaymentValue = p.Amount.Sub(p.Refunded)
	case status == model.OutcomeCharge:
		d.PaymentValue = p.Amount
	}

	if sale == nil {
		if status == model.OutcomeRefund || sub == model.OutcomePartialRefund {
			d.CancelationValue = p.Refunded
		}
		return d
	}

	gross := sale.GrossAmount
	switch {
	case sub == model.OutcomePartialRefund:
		d.PaymentDiff = gross.Sub(p.Amount).Sub(p.Refunded)
	case status == model.OutcomeCharge:
		d.PaymentDiff = gross.Sub(p.Amount)
	}

	if status == model.OutcomeRefund {
		d.RefundedValue = p.Refunded
		d.RefundedDiff = gross.Sub(p.Refunded)
	}
	if sub == model.OutcomePartialRefund {
		d.PartialRefundedValue = p.Refunded
	}
	return d
}

// RoundGross normalizes a raw gross sale amount to the ingest scale.
func RoundGross(raw decimal.Decimal) decimal.Decimal {
	return raw.Round(model.GrossAmountScale)
}
