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

	"github.com/posguard/posguard/model"
)

// GetSaleRecords retrieves the channel's sales and credit notes within the
// business-date range. Canonicalization of the order key and the gross-amount
// rounding happen here so the matching core only ever sees normalized
// records.
func (d Datasource) GetSaleRecords(ctx context.Context, channel string, from, to time.Time) ([]*model.SaleRecord, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT s.sales_transaction_id, s.sales_type_id, COALESCE(s.special_sale_order, ''),
			COALESCE(s.sale_key, ''), s.integrated, COALESCE(s.pos_register_id, ''),
			s.country_id, c.country_name, COALESCE(l.ownerships, ''), COALESCE(s.store_area, ''),
			s.location_id, l.location_name, s.channel_name, COALESCE(s.subchannel_name, ''),
			s.gross_amount, s.sales_date, s.business_date, s.sales_start_dttm, s.sales_end_dttm
		FROM posguard.pos_sales s
		JOIN posguard.countries c ON c.country_id = s.country_id
		JOIN posguard.locations l ON l.location_id = s.location_id
		WHERE s.channel_name = $1
		  AND s.business_date BETWEEN $2 AND $3
		ORDER BY s.sales_transaction_id
	`, channel, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "querying sales ledger")
	}
	defer rows.Close()

	var sales []*model.SaleRecord
	for rows.Next() {
		s := model.SaleRecord{}
		err = rows.Scan(&s.SalesTransactionID, &s.SaleType, &s.RawOrderKey, &s.SaleKey,
			&s.Integrated, &s.PosRegisterID, &s.CountryID, &s.CountryName, &s.Ownerships,
			&s.StoreArea, &s.LocationID, &s.LocationName, &s.ChannelName, &s.SubchannelName,
			&s.GrossAmount, &s.SalesDate, &s.BusinessDate, &s.StartTime, &s.EndTime)
		if err != nil {
			return nil, errors.Wrap(err, "scanning sale record")
		}
		s.GrossAmount = s.GrossAmount.Round(model.GrossAmountScale)
		s.OrderKey = model.CanonicalOrderKey(s.RawOrderKey)
		sales = append(sales, &s)
	}
	return sales, errors.Wrap(rows.Err(), "iterating sale records")
}
