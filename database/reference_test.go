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

func TestGetCurrencyRates(t *testing.T) {
	ds, mock := newMockDatasource(t)

	effective := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"source_currency_cd", "yyyymm", "rate"}).
		AddRow("BRL", "202601", "0.185").
		AddRow("BRL", "202512", "0.179").
		AddRow("ARS", "202601", "0.00105")

	mock.ExpectQuery(regexp.QuoteMeta("FROM posguard.currency_rates")).
		WithArgs(effective).
		WillReturnRows(rows)

	rates, err := ds.GetCurrencyRates(context.Background(), effective)

	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.Equal(t, "BRL", rates[0].CurrencyID)
	assert.Equal(t, "202601", rates[0].YearMonth)
	assert.Equal(t, "0.185", rates[0].Rate.String())
}

func TestGetCurrencyByCountry(t *testing.T) {
	ds, mock := newMockDatasource(t)

	rows := sqlmock.NewRows([]string{"country_id", "currency_cd"}).
		AddRow("BR", "BRL").
		AddRow("AR", "ARS")

	mock.ExpectQuery(regexp.QuoteMeta("FROM posguard.countries")).
		WillReturnRows(rows)

	byCountry, err := ds.GetCurrencyByCountry(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"BR": "BRL", "AR": "ARS"}, byCountry)
}
