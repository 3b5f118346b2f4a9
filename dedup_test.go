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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posguard/posguard/model"
)

func creditNote(id int64, orderKey string) *model.SaleRecord {
	return &model.SaleRecord{
		SalesTransactionID: id,
		SaleType:           model.SaleTypeCreditNote,
		OrderKey:           orderKey,
	}
}

func TestDedupCreditNotesKeepsLatestReissue(t *testing.T) {
	notes := []*model.SaleRecord{
		creditNote(101, "ORD-1"),
		creditNote(305, "ORD-1"),
		creditNote(204, "ORD-1"),
		creditNote(150, "ORD-2"),
	}

	set := DedupCreditNotes(notes)

	require.Len(t, set.Canonical, 2)
	assert.Equal(t, int64(305), set.Canonical["ORD-1"].SalesTransactionID)
	assert.Equal(t, int64(150), set.Canonical["ORD-2"].SalesTransactionID)

	assert.True(t, set.IsDuplicated("ORD-1"))
	assert.False(t, set.IsDuplicated("ORD-2"))
	assert.False(t, set.IsDuplicated("ORD-3"))
}

func TestDedupCreditNotesIgnoresUncorrelatable(t *testing.T) {
	notes := []*model.SaleRecord{
		creditNote(1, ""),
		{SalesTransactionID: 2, SaleType: model.SaleTypeSale, OrderKey: "ORD-9"},
	}

	set := DedupCreditNotes(notes)
	assert.Empty(t, set.Canonical)
	assert.Empty(t, set.DuplicatedKeys)
}

func TestDedupCreditNotesIdempotent(t *testing.T) {
	notes := []*model.SaleRecord{
		creditNote(10, "A"),
		creditNote(20, "A"),
		creditNote(30, "B"),
	}

	first := DedupCreditNotes(notes)

	canonical := make([]*model.SaleRecord, 0, len(first.Canonical))
	for _, n := range first.Canonical {
		canonical = append(canonical, n)
	}
	second := DedupCreditNotes(canonical)

	require.Len(t, second.Canonical, len(first.Canonical))
	for key, n := range first.Canonical {
		assert.Equal(t, n.SalesTransactionID, second.Canonical[key].SalesTransactionID)
	}
	// Duplicates were already collapsed, so none remain.
	assert.Empty(t, second.DuplicatedKeys)
}

func TestDedupProvidersKeepsLatestUpdate(t *testing.T) {
	base := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	records := []*model.ProviderRecord{
		{OrderKey: "PAY-1", Status: "SUCCEEDED", UpdatedAt: base},
		{OrderKey: "PAY-1", Status: "REFUNDED", UpdatedAt: base.Add(2 * time.Hour)},
		{OrderKey: "PAY-2", Status: "SUCCEEDED", UpdatedAt: base},
	}

	out := DedupProviders(records, model.YunoVocabulary(), logrus.New())

	require.Len(t, out, 2)
	byKey := map[string]*model.ProviderRecord{}
	for _, r := range out {
		byKey[r.OrderKey] = r
	}
	assert.Equal(t, "REFUNDED", byKey["PAY-1"].Status)
	assert.Equal(t, "SUCCEEDED", byKey["PAY-2"].Status)
}

func TestDedupProvidersPassthroughForSettlementStreams(t *testing.T) {
	records := []*model.ProviderRecord{
		{OrderKey: "ORD-1", Status: "Venda"},
		{OrderKey: "ORD-1", Status: "Cancelamento Total"},
	}

	out := DedupProviders(records, model.IFoodVocabulary(), logrus.New())
	assert.Len(t, out, 2, "settlement rows are one per event and must not collapse")
}
