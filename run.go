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
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/posguard/posguard/internal/notification"
	"github.com/posguard/posguard/model"
)

var tracer = otel.Tracer("posguard.reconciliation")

// validateParams checks a run request before anything touches the warehouse.
func validateParams(params model.RunParams) error {
	return validation.ValidateStruct(&params,
		validation.Field(&params.Provider, validation.Required),
		validation.Field(&params.Mode, validation.In(
			string(ModeDefault), string(ModePreviousMonth), string(ModeCurrentMonth), string(ModeWindow),
		)),
		validation.Field(&params.From, validation.Date("2006-01-02")),
		validation.Field(&params.To, validation.Date("2006-01-02")),
		validation.Field(&params.ReferenceDate, validation.Date("2006-01-02")),
	)
}

// Reconcile runs the full pipeline for one provider: resolve the window,
// snapshot both sides, dedup, match, classify, price, and replace the window
// in the target table. A date with nothing scheduled returns a summary with
// Skipped set and no error.
func (pg *Posguard) Reconcile(ctx context.Context, params model.RunParams) (*model.RunSummary, error) {
	ctx, span := tracer.Start(ctx, "Reconcile")
	defer span.End()

	if err := validateParams(params); err != nil {
		return nil, err
	}

	vocab := pg.Vocabulary(params.Provider)
	if vocab == nil {
		return nil, &ConfigurationError{Field: "provider", Value: params.Provider, Msg: "no vocabulary registered"}
	}

	ref := time.Now()
	if params.ReferenceDate != "" {
		parsed, err := time.Parse("2006-01-02", params.ReferenceDate)
		if err != nil {
			return nil, &ConfigurationError{Field: "reference_date", Value: params.ReferenceDate, Msg: "want yyyy-MM-dd"}
		}
		ref = parsed
	}

	mode := ModeDefault
	if params.Mode != "" {
		mode = ExecutionMode(params.Mode)
	}

	var window Window
	var err error
	if mode == ModeWindow {
		window, err = ExplicitWindow(params.From, params.To)
	} else {
		window, err = ResolveWindow(ref, mode)
		// Early-month windows widen to the trailing floor so they still see
		// enough history to re-match late-settling events.
		if err == nil {
			if trailing := TrailingWindow(window.To, pg.trailingDays); trailing.From.Before(window.From) {
				window.From = trailing.From
			}
		}
	}
	if errors.Is(err, ErrNothingScheduled) {
		pg.logger.WithField("reference_date", ref.Format("2006-01-02")).Info("nothing scheduled, skipping run")
		return &model.RunSummary{Provider: params.Provider, Skipped: true, Status: model.StatusCompleted}, nil
	}
	if err != nil {
		return nil, err
	}

	runID := params.RunID
	if runID == "" {
		runID = model.GenerateUUIDWithSuffix("run")
	}
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.provider", params.Provider),
		attribute.String("run.window", window.String()),
	)

	summary := &model.RunSummary{
		RunID:      runID,
		Provider:   params.Provider,
		WindowFrom: window.From,
		WindowTo:   window.To,
		Status:     model.StatusStarted,
		StartedAt:  time.Now(),
	}
	if err := pg.datasource.RecordRun(ctx, summary); err != nil {
		return nil, err
	}

	if err := pg.executeRun(ctx, vocab, window, summary); err != nil {
		if statusErr := pg.datasource.UpdateRunStatus(ctx, runID, model.StatusFailed, 0); statusErr != nil {
			pg.logger.WithError(statusErr).Error("failed to mark run as failed")
		}
		notification.NotifyRunFailure(runID, params.Provider, err)
		summary.Status = model.StatusFailed
		return summary, err
	}

	summary.Status = model.StatusCompleted
	summary.CompletedAt = time.Now()
	if err := pg.datasource.UpdateRunStatus(ctx, runID, model.StatusCompleted, summary.RowsOut); err != nil {
		return summary, err
	}

	pg.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"provider": params.Provider,
		"window":   window.String(),
		"rows_out": summary.RowsOut,
	}).Info("reconciliation completed")
	return summary, nil
}

func (pg *Posguard) executeRun(ctx context.Context, vocab *model.Vocabulary, window Window, summary *model.RunSummary) error {
	if err := pg.datasource.UpdateRunStatus(ctx, summary.RunID, model.StatusInProgress, 0); err != nil {
		return err
	}

	sales, providers, err := pg.fetchSnapshots(ctx, vocab, window)
	if err != nil {
		return err
	}
	summary.SalesIn = len(sales)
	summary.ProvidersIn = len(providers)

	_, span := tracer.Start(ctx, "MatchAndClassify", trace.WithAttributes(
		attribute.Int("sales", len(sales)),
		attribute.Int("providers", len(providers)),
	))
	var pureSales, creditNotes []*model.SaleRecord
	for _, s := range sales {
		if s.SaleType == model.SaleTypeCreditNote {
			creditNotes = append(creditNotes, s)
		} else {
			pureSales = append(pureSales, s)
		}
	}
	notes := DedupCreditNotes(creditNotes)
	summary.Duplicates = len(notes.DuplicatedKeys)

	providers = DedupProviders(providers, vocab, pg.logger)
	matched := Match(pureSales, providers, vocab, pg.logger)

	classifier := &Classifier{
		Vocab:     vocab,
		Notes:     notes,
		RunID:     summary.RunID,
		AuditedAt: time.Now(),
	}
	rows := classifier.Rows(matched)
	span.End()

	summary.Integrated = len(matched.Integrated)
	summary.ManualAssoc = len(matched.ManuallyAssociated)
	summary.ManualUnass = len(matched.UnassociatedSales)
	summary.Orphans = len(matched.OrphanProviders)
	summary.RowsOut = len(rows)

	if err := pg.applyRates(ctx, rows); err != nil {
		return err
	}

	loadCtx, loadSpan := tracer.Start(ctx, "ReplaceWindow")
	defer loadSpan.End()
	return pg.datasource.ReplaceWindow(loadCtx, vocab.Provider, window.From, window.To, rows)
}

// fetchSnapshots pulls both sides of the reconciliation. The provider pull
// reaches back a flat lookback behind the window so late-settling events can
// still re-match; the sales pull widens the lower bound by one day to cover
// sales rung up just before midnight.
func (pg *Posguard) fetchSnapshots(ctx context.Context, vocab *model.Vocabulary, window Window) ([]*model.SaleRecord, []*model.ProviderRecord, error) {
	ctx, span := tracer.Start(ctx, "FetchSnapshots")
	defer span.End()

	providerWindow := window
	if lookback := ProviderLookback(window.To, pg.lookbackDays); lookback.From.Before(providerWindow.From) {
		providerWindow.From = lookback.From
	}
	salesWindow := SalesWindow(providerWindow)

	sales, err := pg.datasource.GetSaleRecords(ctx, vocab.Channel, salesWindow.From, salesWindow.To)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetching sales snapshot")
	}
	providers, err := pg.datasource.GetProviderRecords(ctx, vocab.Provider, providerWindow.From, providerWindow.To.AddDate(0, 0, 1).Add(-time.Second))
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetching provider snapshot")
	}
	return sales, providers, nil
}

func (pg *Posguard) applyRates(ctx context.Context, rows []*model.ReconciliationRow) error {
	ctx, span := tracer.Start(ctx, "ApplyCurrencyRates")
	defer span.End()

	byCountry, err := pg.datasource.GetCurrencyByCountry(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching country currencies")
	}
	rates, err := pg.datasource.GetCurrencyRates(ctx, time.Now())
	if err != nil {
		return errors.Wrap(err, "fetching currency rates")
	}
	NewRateTable(byCountry, rates).Apply(rows, pg.logger)
	return nil
}
