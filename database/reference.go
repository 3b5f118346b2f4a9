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

// GetCurrencyRates retrieves the monthly translation-rate snapshot effective
// on the given date, one row per currency and calendar month.
func (d Datasource) GetCurrencyRates(ctx context.Context, effective time.Time) ([]model.CurrencyRate, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT source_currency_cd, to_char(calendar_dt, 'YYYYMM'), rate
		FROM posguard.currency_rates
		WHERE $1 BETWEEN rate_start_dt AND rate_end_dt
	`, effective)
	if err != nil {
		return nil, errors.Wrap(err, "querying currency rates")
	}
	defer rows.Close()

	var rates []model.CurrencyRate
	for rows.Next() {
		r := model.CurrencyRate{}
		if err := rows.Scan(&r.CurrencyID, &r.YearMonth, &r.Rate); err != nil {
			return nil, errors.Wrap(err, "scanning currency rate")
		}
		rates = append(rates, r)
	}
	return rates, errors.Wrap(rows.Err(), "iterating currency rates")
}

// GetCurrencyByCountry retrieves the country-to-currency mapping.
func (d Datasource) GetCurrencyByCountry(ctx context.Context) (map[string]string, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT country_id, currency_cd
		FROM posguard.countries
	`)
	if err != nil {
		return nil, errors.Wrap(err, "querying countries")
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var country, currency string
		if err := rows.Scan(&country, &currency); err != nil {
			return nil, errors.Wrap(err, "scanning country")
		}
		out[country] = currency
	}
	return out, errors.Wrap(rows.Err(), "iterating countries")
}
