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
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/posguard/posguard/model"
)

// CreditNoteSet is the result of credit-note deduplication: the canonical
// note per order key plus the set of keys that carried more than one note.
type CreditNoteSet struct {
	Canonical map[string]*model.SaleRecord
	// DuplicatedKeys holds every order key that had two or more credit
	// notes. Rows for these keys are labeled as duplicates downstream.
	DuplicatedKeys map[string]struct{}
}

// IsDuplicated reports whether the order key carried more than one credit note.
func (c *CreditNoteSet) IsDuplicated(orderKey string) bool {
	_, ok := c.DuplicatedKeys[orderKey]
	return ok
}

// DedupCreditNotes reduces credit notes to one canonical note per order key.
// When a key carries several notes the one with the highest transaction id
// wins, the later entry being the operative re-issue. Notes without a usable
// order key cannot be correlated and are ignored here. The operation is
// idempotent: feeding the canonical set back in returns it unchanged.
func DedupCreditNotes(notes []*model.SaleRecord) *CreditNoteSet {
	byKey := make(map[string][]*model.SaleRecord)
	for _, n := range notes {
		if n.SaleType != model.SaleTypeCreditNote || n.OrderKey == "" {
			continue
		}
		byKey[n.OrderKey] = append(byKey[n.OrderKey], n)
	}

	out := &CreditNoteSet{
		Canonical:      make(map[string]*model.SaleRecord, len(byKey)),
		DuplicatedKeys: make(map[string]struct{}),
	}
	for key, group := range byKey {
		sort.Slice(group, func(i, j int) bool {
			return group[i].SalesTransactionID > group[j].SalesTransactionID
		})
		out.Canonical[key] = group[0]
		if len(group) > 1 {
			out.DuplicatedKeys[key] = struct{}{}
		}
	}
	return out
}

// DedupProviders reduces a replaying provider stream to the latest event per
// order key, ranked by update timestamp. Streams whose vocabulary does not
// replay pass through untouched. Discarded replays are counted and logged,
// never fatal.
func DedupProviders(records []*model.ProviderRecord, vocab *model.Vocabulary, logger *logrus.Logger) []*model.ProviderRecord {
	if !vocab.DedupeByUpdatedAt {
		return records
	}

	byKey := make(map[string][]*model.ProviderRecord)
	order := make([]string, 0, len(records))
	for _, r := range records {
		if _, seen := byKey[r.OrderKey]; !seen {
			order = append(order, r.OrderKey)
		}
		byKey[r.OrderKey] = append(byKey[r.OrderKey], r)
	}

	out := make([]*model.ProviderRecord, 0, len(byKey))
	replays := 0
	for _, key := range order {
		group := byKey[key]
		sort.Slice(group, func(i, j int) bool {
			return group[i].UpdatedAt.After(group[j].UpdatedAt)
		})
		out = append(out, group[0])
		replays += len(group) - 1
	}

	if replays > 0 && logger != nil {
		logger.WithFields(logrus.Fields{
			"provider": vocab.Provider,
			"replays":  replays,
		}).Info("discarded replayed provider events")
	}
	return out
}
