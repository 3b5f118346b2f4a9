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

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/posguard/posguard/model"
)

// GetProviderRecords retrieves the provider's payment events created within
// the lookback range. Settlement component columns are null for gateway
// events; the record's Components stays nil in that case.
func (d Datasource) GetProviderRecords(ctx context.Context, provider string, from, to time.Time) ([]*model.ProviderRecord, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT COALESCE(p.order_key, ''), COALESCE(p.raw_order_key, ''),
			COALESCE(p.status, ''), COALESCE(p.sub_status, ''),
			p.amount, p.captured, p.refunded,
			p.sale_amount, p.sale_no_impact,
			p.cancel_total, p.cancel_total_no_impact,
			p.cancel_partial, p.cancel_partial_no_impact,
			p.reimbursement, p.other_adjustments,
			COALESCE(p.country_id, ''), COALESCE(p.store_id, ''), COALESCE(p.location_acronym, ''),
			p.created_at, p.created_at_local, p.updated_at, p.updated_at_local
		FROM posguard.provider_events p
		WHERE p.provider = $1
		  AND p.created_at_local BETWEEN $2 AND $3
		ORDER BY p.updated_at
	`, provider, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "querying provider events")
	}
	defer rows.Close()

	var records []*model.ProviderRecord
	for rows.Next() {
		p := model.ProviderRecord{}
		var amount, captured, refunded decimal.NullDecimal
		var sale, saleNoImpact, cancelTotal, cancelTotalNI decimal.NullDecimal
		var cancelPartial, cancelPartialNI, reimbursement, other decimal.NullDecimal
		err = rows.Scan(&p.OrderKey, &p.RawOrderKey, &p.Status, &p.SubStatus,
			&amount, &captured, &refunded,
			&sale, &saleNoImpact, &cancelTotal, &cancelTotalNI,
			&cancelPartial, &cancelPartialNI, &reimbursement, &other,
			&p.CountryID, &p.StoreID, &p.LocationAcronym,
			&p.CreatedAt, &p.CreatedAtLocal, &p.UpdatedAt, &p.UpdatedAtLocal)
		if err != nil {
			return nil, errors.Wrap(err, "scanning provider event")
		}
		p.Amount = amount.Decimal
		p.Captured = captured.Decimal
		p.Refunded = refunded.Decimal

		if sale.Valid || cancelTotal.Valid || reimbursement.Valid {
			p.Components = &model.SettlementComponents{
				Sale:                  sale.Decimal,
				SaleNoImpact:          saleNoImpact.Decimal,
				CancelTotal:           cancelTotal.Decimal,
				CancelTotalNoImpact:   cancelTotalNI.Decimal,
				CancelPartial:         cancelPartial.Decimal,
				CancelPartialNoImpact: cancelPartialNI.Decimal,
				Reimbursement:         reimbursement.Decimal,
				OtherAdjustments:      other.Decimal,
			}
		}
		records = append(records, &p)
	}
	return records, errors.Wrap(rows.Err(), "iterating provider events")
}
