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
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var providerColumns = []string{
	"order_key", "raw_order_key", "status", "sub_status",
	"amount", "captured", "refunded",
	"sale_amount", "sale_no_impact",
	"cancel_total", "cancel_total_no_impact",
	"cancel_partial", "cancel_partial_no_impact",
	"reimbursement", "other_adjustments",
	"country_id", "store_id", "location_acronym",
	"created_at", "created_at_local", "updated_at", "updated_at_local",
}

func TestGetProviderRecords(t *testing.T) {
	ds, mock := newMockDatasource(t)

	created := time.Date(2026, time.January, 10, 23, 16, 0, 0, time.UTC)
	local := created.Add(-3 * time.Hour)

	rows := sqlmock.NewRows(providerColumns).
		// Settlement event with signed component columns.
		AddRow("ORD-12345", "ORD-12345 iFood", "Venda", "",
			"100.12", "100.12", nil,
			"100.12", "0", "-100.12", nil, nil, nil, nil, nil,
			"BR", "S-9", "SPA",
			created, local, created.Add(time.Minute), local.Add(time.Minute)).
		// Gateway event; component columns are all null.
		AddRow("PAY-777", "PAY-777", "SUCCEEDED", "PARTIALLY_REFUNDED",
			"52.00", "52.00", "10.00",
			nil, nil, nil, nil, nil, nil, nil, nil,
			"BR", "S-9", "SPA",
			created, local, created.Add(time.Minute), local.Add(time.Minute))

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.January, 31, 23, 59, 59, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM posguard.provider_events")).
		WithArgs("IFOOD", from, to).
		WillReturnRows(rows)

	records, err := ds.GetProviderRecords(context.Background(), "IFOOD", from, to)

	require.NoError(t, err)
	require.Len(t, records, 2)

	settlement := records[0]
	require.NotNil(t, settlement.Components)
	assert.Equal(t, "100.12", settlement.Components.Sale.String())
	assert.Equal(t, "-100.12", settlement.Components.CancelTotal.String())
	assert.True(t, settlement.Refunded.IsZero())
	assert.Equal(t, "SPA", settlement.LocationAcronym)

	gateway := records[1]
	assert.Nil(t, gateway.Components)
	assert.Equal(t, "PARTIALLY_REFUNDED", gateway.SubStatus)
	assert.Equal(t, "10", gateway.Refunded.String())
}

func TestGetProviderRecordsQueryError(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM posguard.provider_events")).
		WillReturnError(assert.AnError)

	_, err := ds.GetProviderRecords(context.Background(), "YUNO", time.Now(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying provider events")
}
