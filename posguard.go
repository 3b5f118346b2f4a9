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

	"github.com/posguard/posguard/config"
	"github.com/posguard/posguard/database"
	"github.com/posguard/posguard/model"
)

// Posguard is the reconciliation service: it resolves run windows, pulls the
// sales and provider snapshots, and produces the labeled output table.
type Posguard struct {
	datasource   database.IDataSource
	logger       *logrus.Logger
	vocabularies map[string]*model.Vocabulary
	lookbackDays int
	trailingDays int
}

// NewPosguard initializes the service with the provided datasource. The
// supported provider vocabularies are registered here; adding a provider
// means adding a vocabulary, not a pipeline.
func NewPosguard(db database.IDataSource) (*Posguard, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	vocabularies := map[string]*model.Vocabulary{}
	for _, v := range []*model.Vocabulary{model.IFoodVocabulary(), model.YunoVocabulary()} {
		vocabularies[v.Provider] = v
	}

	return &Posguard{
		datasource:   db,
		logger:       logrus.New(),
		vocabularies: vocabularies,
		lookbackDays: configuration.Reconciliation.ProviderLookbackDays,
		trailingDays: configuration.Reconciliation.MinTrailingDays,
	}, nil
}

// Vocabulary returns the registered vocabulary for a provider name, or nil.
func (pg *Posguard) Vocabulary(provider string) *model.Vocabulary {
	return pg.vocabularies[provider]
}

// Providers lists the registered provider names.
func (pg *Posguard) Providers() []string {
	out := make([]string, 0, len(pg.vocabularies))
	for name := range pg.vocabularies {
		out = append(out, name)
	}
	return out
}
