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

package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale types as recorded in the POS ledger.
const (
	SaleTypeSale       = 1
	SaleTypeCreditNote = 2
)

// GrossAmountScale is the fixed scale applied to gross sale amounts at the
// point they enter the pipeline. Computed deltas carry full precision.
const GrossAmountScale = 5

// SaleRecord is one POS transaction or its credit-note counterpart, as read
// from the sales ledger. Records are immutable snapshots for the duration of
// a run.
type SaleRecord struct {
	SalesTransactionID int64
	SaleType           int
	// RawOrderKey is the external correlation id exactly as the POS stored
	// it. It may be empty, malformed, or carry trailing free text.
	RawOrderKey string
	// OrderKey is the canonical correlation key derived from RawOrderKey.
	// Empty when the raw key is unusable for exact matching.
	OrderKey       string
	SaleKey        string
	Integrated     decimal.Decimal
	PosRegisterID  string
	CountryID      string
	CountryName    string
	Ownerships     string
	StoreArea      string
	LocationID     string
	LocationName   string
	ChannelName    string
	SubchannelName string
	// GrossAmount is rounded to GrossAmountScale decimal places at ingest.
	GrossAmount  decimal.Decimal
	SalesDate    time.Time
	BusinessDate time.Time
	StartTime    time.Time
	EndTime      time.Time
}

// CanonicalOrderKey derives the usable correlation key from a raw POS order
// key. Keys of four characters or fewer are placeholders and unusable; longer
// keys are truncated at the first space, which strips trailing free text
// cashiers occasionally append.
func CanonicalOrderKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) <= 4 {
		return ""
	}
	if i := strings.IndexByte(trimmed, ' '); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}

// LocationPrefix returns the three-character location acronym used in keys
// and fingerprints.
func (s *SaleRecord) LocationPrefix() string {
	if len(s.LocationName) < 3 {
		return s.LocationName
	}
	return s.LocationName[:3]
}

// RegionKey is the country-location composite used for regional grouping in
// the output, e.g. "Brasil-SPA".
func (s *SaleRecord) RegionKey() string {
	return s.CountryName + "-" + s.LocationPrefix()
}

// PosRegisterNumber is the register number portion of the register id,
// everything before the first underscore, or the whole id when it carries
// no separator.
func (s *SaleRecord) PosRegisterNumber() string {
	if i := strings.IndexByte(s.PosRegisterID, '_'); i > 0 {
		return s.PosRegisterID[:i]
	}
	return s.PosRegisterID
}

// Fingerprint builds the fallback match key for a sale: transaction end date,
// location prefix and the gross amount rounded to the provider's fingerprint
// scale. Only comparable against fingerprints built with the same scale.
func (s *SaleRecord) Fingerprint(scale int32) string {
	return s.EndTime.Format("2006-01-02") + s.LocationPrefix() + s.GrossAmount.Round(scale).StringFixed(scale)
}

// TransactionSeconds is the POS transaction duration in whole seconds.
func (s *SaleRecord) TransactionSeconds() int64 {
	return int64(s.EndTime.Sub(s.StartTime) / time.Second)
}
