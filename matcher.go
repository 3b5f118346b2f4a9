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

// MatchedPair is one sale associated with one provider event.
type MatchedPair struct {
	Sale     *model.SaleRecord
	Provider *model.ProviderRecord
}

// MatchResult partitions every input sale and provider event into exactly one
// bucket. No record appears twice and none is dropped.
type MatchResult struct {
	// Integrated pairs matched on the order key.
	Integrated []MatchedPair
	// ManuallyAssociated pairs matched on the fallback fingerprint.
	ManuallyAssociated []MatchedPair
	// UnassociatedSales found no provider counterpart.
	UnassociatedSales []*model.SaleRecord
	// OrphanProviders found no sale counterpart.
	OrphanProviders []*model.ProviderRecord
}

// Match associates sales with provider events in two tiers. Tier one joins on
// the canonical order key; an order with several settlement events pairs the
// sale with each of them, one output row per event. Tier two, for sales whose
// order key is unusable, joins on a fingerprint of business date, location
// prefix and rounded amount; a fingerprint repeated on either side is
// ambiguous and every record carrying it is refused automatic association.
// Whatever remains is unassociated or orphaned.
func Match(sales []*model.SaleRecord, providers []*model.ProviderRecord, vocab *model.Vocabulary, logger *logrus.Logger) *MatchResult {
	res := &MatchResult{}

	providerByKey := make(map[string][]*model.ProviderRecord, len(providers))
	for _, p := range providers {
		if p.OrderKey != "" {
			providerByKey[p.OrderKey] = append(providerByKey[p.OrderKey], p)
		}
	}

	consumed := make(map[*model.ProviderRecord]struct{}, len(providers))
	claimedKeys := make(map[string]struct{})
	var keyless []*model.SaleRecord
	for _, s := range sales {
		if s.OrderKey == "" {
			keyless = append(keyless, s)
			continue
		}
		group, ok := providerByKey[s.OrderKey]
		if !ok {
			res.UnassociatedSales = append(res.UnassociatedSales, s)
			continue
		}
		if _, taken := claimedKeys[s.OrderKey]; taken {
			// Two sales claiming one order key; only the first
			// association stands.
			res.UnassociatedSales = append(res.UnassociatedSales, s)
			continue
		}
		claimedKeys[s.OrderKey] = struct{}{}
		for _, p := range group {
			consumed[p] = struct{}{}
			res.Integrated = append(res.Integrated, MatchedPair{Sale: s, Provider: p})
		}
	}

	// Tier two operates on what tier one left behind.
	var residualProviders []*model.ProviderRecord
	for _, p := range providers {
		if _, taken := consumed[p]; !taken {
			residualProviders = append(residualProviders, p)
		}
	}

	saleFP := make(map[string][]*model.SaleRecord, len(keyless))
	for _, s := range keyless {
		fp := s.Fingerprint(vocab.FingerprintScale)
		saleFP[fp] = append(saleFP[fp], s)
	}
	providerFP := make(map[string][]*model.ProviderRecord, len(residualProviders))
	for _, p := range residualProviders {
		fp := p.Fingerprint(vocab)
		providerFP[fp] = append(providerFP[fp], p)
	}

	matchedProviders := make(map[*model.ProviderRecord]struct{})
	ambiguous := 0
	for fp, ss := range saleFP {
		ps := providerFP[fp]
		if len(ss) == 1 && len(ps) == 1 {
			res.ManuallyAssociated = append(res.ManuallyAssociated, MatchedPair{Sale: ss[0], Provider: ps[0]})
			matchedProviders[ps[0]] = struct{}{}
			continue
		}
		if len(ps) > 0 {
			ambiguous++
		}
		res.UnassociatedSales = append(res.UnassociatedSales, ss...)
	}
	for _, p := range residualProviders {
		if _, ok := matchedProviders[p]; !ok {
			res.OrphanProviders = append(res.OrphanProviders, p)
		}
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"provider":   vocab.Provider,
			"integrated": len(res.Integrated),
			"associated": len(res.ManuallyAssociated),
			"unassoc":    len(res.UnassociatedSales),
			"orphans":    len(res.OrphanProviders),
			"ambiguous":  ambiguous,
		}).Info("matching complete")
	}
	return res
}
