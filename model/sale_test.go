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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalOrderKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ORD-12345", "ORD-12345"},
		{"  ORD-12345  ", "ORD-12345"},
		{"ORD-12345 iFood delivery", "ORD-12345"},
		{"", ""},
		{"   ", ""},
		{"abc", ""},
		{"1234", ""},
		{"12345", "12345"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalOrderKey(tt.raw), "raw %q", tt.raw)
	}
}

func TestPosRegisterNumber(t *testing.T) {
	tests := []struct {
		registerID string
		want       string
	}{
		{"POS_07", "POS"},
		{"12_SPA_MORUMBI", "12"},
		{"CAJA5", "CAJA5"},
		{"", ""},
	}

	for _, tt := range tests {
		s := SaleRecord{PosRegisterID: tt.registerID}
		assert.Equal(t, tt.want, s.PosRegisterNumber(), "register id %q", tt.registerID)
	}
}

func TestSaleFingerprint(t *testing.T) {
	s := SaleRecord{
		LocationName: "SPA Morumbi",
		GrossAmount:  decimal.NewFromFloat(100.456),
		EndTime:      time.Date(2026, time.January, 10, 20, 15, 0, 0, time.UTC),
	}

	// Settlement scale keeps cents; gateway scale drops them.
	assert.Equal(t, "2026-01-10SPA100.46", s.Fingerprint(2))
	assert.Equal(t, "2026-01-10SPA100", s.Fingerprint(0))

	short := SaleRecord{LocationName: "SP", EndTime: s.EndTime}
	assert.Equal(t, "2026-01-10SP0", short.Fingerprint(0))
}

func TestRegionKey(t *testing.T) {
	s := SaleRecord{CountryName: "Brasil", LocationName: "SPA Morumbi"}
	assert.Equal(t, "Brasil-SPA", s.RegionKey())
}

func TestTransactionSeconds(t *testing.T) {
	start := time.Date(2026, time.January, 10, 20, 13, 30, 0, time.UTC)
	s := SaleRecord{StartTime: start, EndTime: start.Add(95 * time.Second)}
	assert.Equal(t, int64(95), s.TransactionSeconds())
}
