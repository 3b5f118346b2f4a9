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
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posguard/posguard/model"
)

func testSale(id int64, orderKey string, amount float64) *model.SaleRecord {
	end := time.Date(2026, time.January, 10, 20, 15, 0, 0, time.UTC)
	return &model.SaleRecord{
		SalesTransactionID: id,
		SaleType:           model.SaleTypeSale,
		OrderKey:           orderKey,
		LocationName:       "SPA Morumbi",
		CountryName:        "Brasil",
		GrossAmount:        decimal.NewFromFloat(amount),
		BusinessDate:       date(2026, time.January, 10),
		StartTime:          end.Add(-90 * time.Second),
		EndTime:            end,
	}
}

func testProvider(orderKey string, amount float64) *model.ProviderRecord {
	created := time.Date(2026, time.January, 10, 20, 16, 0, 0, time.UTC)
	return &model.ProviderRecord{
		OrderKey:        orderKey,
		Status:          "SUCCEEDED",
		Amount:          decimal.NewFromFloat(amount),
		Captured:        decimal.NewFromFloat(amount),
		LocationAcronym: "SPA",
		CreatedAt:       created,
		CreatedAtLocal:  created.Add(-3 * time.Hour),
		UpdatedAt:       created.Add(time.Minute),
		UpdatedAtLocal:  created.Add(time.Minute - 3*time.Hour),
	}
}

func TestMatchTierOneByOrderKey(t *testing.T) {
	sales := []*model.SaleRecord{testSale(1, "ORD-1", 100), testSale(2, "ORD-2", 50)}
	providers := []*model.ProviderRecord{testProvider("ORD-1", 100), testProvider("ORD-3", 75)}

	res := Match(sales, providers, model.YunoVocabulary(), logrus.New())

	require.Len(t, res.Integrated, 1)
	assert.Equal(t, int64(1), res.Integrated[0].Sale.SalesTransactionID)
	assert.Equal(t, "ORD-1", res.Integrated[0].Provider.OrderKey)

	require.Len(t, res.UnassociatedSales, 1)
	assert.Equal(t, "ORD-2", res.UnassociatedSales[0].OrderKey)

	require.Len(t, res.OrphanProviders, 1)
	assert.Equal(t, "ORD-3", res.OrphanProviders[0].OrderKey)
}

func TestMatchPairsEverySettlementEvent(t *testing.T) {
	// A settled order later cancelled produces two events on one key; the
	// sale pairs with both, one output row each.
	sales := []*model.SaleRecord{testSale(1, "ORD-1", 100)}
	sale := testProvider("ORD-1", 100)
	sale.Status = "Venda"
	cancel := testProvider("ORD-1", 100)
	cancel.Status = "Cancelamento Total"
	providers := []*model.ProviderRecord{sale, cancel}

	res := Match(sales, providers, model.IFoodVocabulary(), logrus.New())

	require.Len(t, res.Integrated, 2)
	assert.Empty(t, res.OrphanProviders)
	assert.Empty(t, res.UnassociatedSales)
}

func TestMatchTierTwoFingerprint(t *testing.T) {
	vocab := model.YunoVocabulary()

	// No usable order key on the sale, unique fingerprint on both sides.
	sale := testSale(1, "", 42)
	provider := testProvider("PAY-XYZ", 42)
	// Fingerprint date comes from the provider's local update timestamp.
	provider.UpdatedAtLocal = time.Date(2026, time.January, 10, 17, 16, 0, 0, time.UTC)

	res := Match([]*model.SaleRecord{sale}, []*model.ProviderRecord{provider}, vocab, logrus.New())

	// "PAY-XYZ" never appears on the sales side, so tier one leaves the
	// provider for tier two.
	require.Len(t, res.ManuallyAssociated, 1)
	assert.Equal(t, int64(1), res.ManuallyAssociated[0].Sale.SalesTransactionID)
	assert.Empty(t, res.UnassociatedSales)
	assert.Empty(t, res.OrphanProviders)
}

func TestMatchRefusesAmbiguousFingerprints(t *testing.T) {
	vocab := model.YunoVocabulary()
	updated := time.Date(2026, time.January, 10, 17, 0, 0, 0, time.UTC)

	// Two keyless sales with identical fingerprints on the same day.
	s1 := testSale(1, "", 42)
	s2 := testSale(2, "", 42)
	p := testProvider("PAY-1", 42)
	p.UpdatedAtLocal = updated

	res := Match([]*model.SaleRecord{s1, s2}, []*model.ProviderRecord{p}, vocab, logrus.New())

	assert.Empty(t, res.ManuallyAssociated, "ambiguous fingerprints must not auto-associate")
	assert.Len(t, res.UnassociatedSales, 2)
	assert.Len(t, res.OrphanProviders, 1)
}

func TestMatchRefusesDuplicateProviderFingerprints(t *testing.T) {
	vocab := model.YunoVocabulary()
	updated := time.Date(2026, time.January, 10, 17, 0, 0, 0, time.UTC)

	s := testSale(1, "", 42)
	p1 := testProvider("PAY-1", 42)
	p1.UpdatedAtLocal = updated
	p2 := testProvider("PAY-2", 42)
	p2.UpdatedAtLocal = updated

	res := Match([]*model.SaleRecord{s}, []*model.ProviderRecord{p1, p2}, vocab, logrus.New())

	assert.Empty(t, res.ManuallyAssociated)
	assert.Len(t, res.UnassociatedSales, 1)
	assert.Len(t, res.OrphanProviders, 2)
}

func TestMatchKeyedButUnmatchedSaleStaysUnassociated(t *testing.T) {
	// A sale with a usable key never falls back to the fingerprint tier.
	sale := testSale(1, "ORD-UNIQUE", 42)
	provider := testProvider("PAY-OTHER", 42)
	provider.UpdatedAtLocal = time.Date(2026, time.January, 10, 17, 0, 0, 0, time.UTC)

	res := Match([]*model.SaleRecord{sale}, []*model.ProviderRecord{provider}, model.YunoVocabulary(), logrus.New())

	assert.Empty(t, res.ManuallyAssociated)
	assert.Len(t, res.UnassociatedSales, 1)
	assert.Len(t, res.OrphanProviders, 1)
}

func TestMatchPartitionIsExhaustive(t *testing.T) {
	gofakeit.Seed(7)
	vocab := model.YunoVocabulary()

	var sales []*model.SaleRecord
	var providers []*model.ProviderRecord
	for i := 0; i < 200; i++ {
		key := ""
		if gofakeit.Bool() {
			key = fmt.Sprintf("ORD-%d", gofakeit.Number(1, 120))
		}
		sales = append(sales, testSale(int64(i+1), key, float64(gofakeit.Number(5, 80))))
	}
	for i := 0; i < 150; i++ {
		providers = append(providers, testProvider(fmt.Sprintf("ORD-%d", gofakeit.Number(1, 120)), float64(gofakeit.Number(5, 80))))
	}

	res := Match(sales, providers, vocab, logrus.New())

	// Every sale lands in exactly one bucket.
	saleCount := len(res.ManuallyAssociated) + len(res.UnassociatedSales)
	seen := map[int64]int{}
	for _, pair := range res.Integrated {
		seen[pair.Sale.SalesTransactionID]++
	}
	saleCount += len(seen)
	assert.Equal(t, len(sales), saleCount)

	// Every provider event lands in exactly one bucket.
	providerCount := len(res.Integrated) + len(res.ManuallyAssociated) + len(res.OrphanProviders)
	assert.Equal(t, len(providers), providerCount)
}
