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

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/posguard/posguard/model"
)

// MockDataSource is a testify mock of database.IDataSource.
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) GetSaleRecords(ctx context.Context, channel string, from, to time.Time) ([]*model.SaleRecord, error) {
	args := m.Called(ctx, channel, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SaleRecord), args.Error(1)
}

func (m *MockDataSource) GetProviderRecords(ctx context.Context, provider string, from, to time.Time) ([]*model.ProviderRecord, error) {
	args := m.Called(ctx, provider, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProviderRecord), args.Error(1)
}

func (m *MockDataSource) GetCurrencyRates(ctx context.Context, effective time.Time) ([]model.CurrencyRate, error) {
	args := m.Called(ctx, effective)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CurrencyRate), args.Error(1)
}

func (m *MockDataSource) GetCurrencyByCountry(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockDataSource) RecordRun(ctx context.Context, summary *model.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockDataSource) UpdateRunStatus(ctx context.Context, runID, status string, rowsOut int) error {
	args := m.Called(ctx, runID, status, rowsOut)
	return args.Error(0)
}

func (m *MockDataSource) GetRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RunSummary), args.Error(1)
}

func (m *MockDataSource) ReplaceWindow(ctx context.Context, provider string, from, to time.Time, rows []*model.ReconciliationRow) error {
	args := m.Called(ctx, provider, from, to, rows)
	return args.Error(0)
}
