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
	"github.com/sirupsen/logrus"

	"github.com/posguard/posguard/model"
)

// RateTable resolves monthly FX rates for output rows. Rates are keyed by
// currency and the yyyyMM of the row's business date; the snapshot is the one
// effective on the processing date, applied retroactively to the whole
// window.
type RateTable struct {
	// CurrencyByCountry maps country id to its currency code.
	CurrencyByCountry map[string]string
	rates             map[string]map[string]model.CurrencyRate
}

// NewRateTable indexes a rate snapshot for lookup.
func NewRateTable(currencyByCountry map[string]string, rates []model.CurrencyRate) *RateTable {
	t := &RateTable{
		CurrencyByCountry: currencyByCountry,
		rates:             make(map[string]map[string]model.CurrencyRate),
	}
	for _, r := range rates {
		byMonth, ok := t.rates[r.CurrencyID]
		if !ok {
			byMonth = make(map[string]model.CurrencyRate)
			t.rates[r.CurrencyID] = byMonth
		}
		byMonth[r.YearMonth] = r
	}
	return t
}

// Apply stamps each row with its currency and the month's rate. A missing
// country mapping or rate leaves the row's rate nil; the gap is counted and
// logged, never fatal.
func (t *RateTable) Apply(rows []*model.ReconciliationRow, logger *logrus.Logger) {
	missing := 0
	for _, row := range rows {
		if row.CountryID == nil || row.BusinessDate == nil {
			missing++
			continue
		}
		currency, ok := t.CurrencyByCountry[*row.CountryID]
		if !ok {
			missing++
			continue
		}
		row.CurrencyID = &currency

		rate, ok := t.rates[currency][row.BusinessDate.Format("200601")]
		if !ok {
			missing++
			continue
		}
		v := rate.Rate
		row.ExchangeRate = &v
	}

	if missing > 0 && logger != nil {
		logger.WithField("rows_without_rate", missing).Warn("reference data missing currency rates")
	}
}
