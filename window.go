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
	"time"

	"github.com/pkg/errors"
)

// ExecutionMode selects how a run's business-date window is derived.
type ExecutionMode string

const (
	// ModeDefault derives the window from the calendar: the day after the
	// reference date decides whether a previous-month or current-month run
	// is due, or nothing at all.
	ModeDefault ExecutionMode = "DEFAULT"
	// ModePreviousMonth reconciles the whole previous calendar month.
	ModePreviousMonth ExecutionMode = "PREVIOUS_MONTH"
	// ModeCurrentMonth reconciles the current month up to yesterday.
	ModeCurrentMonth ExecutionMode = "CURRENT_MONTH"
	// ModeWindow reconciles an explicit caller-supplied date range.
	ModeWindow ExecutionMode = "WINDOW"
)

// ErrNothingScheduled signals that the calendar schedules no run for the
// reference date. Callers treat it as a clean no-op, not a failure.
var ErrNothingScheduled = errors.New("no reconciliation scheduled for this date")

// ConfigurationError reports an unusable run parameter together with the
// offending value.
type ConfigurationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
}

// Window is an inclusive business-date range, dates truncated to midnight UTC.
type Window struct {
	From time.Time
	To   time.Time
}

// Days is the number of calendar days the window spans.
func (w Window) Days() int {
	return int(w.To.Sub(w.From)/(24*time.Hour)) + 1
}

// Contains reports whether the date falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(w.From) && !d.After(w.To)
}

func (w Window) String() string {
	return w.From.Format("2006-01-02") + ".." + w.To.Format("2006-01-02")
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveWindow derives the business-date window for a run. In the default
// mode the schedule looks one day ahead of the reference date: a Monday there
// means the previous month just closed its final weekend and gets a full
// re-run, a Thursday means a mid-month checkpoint over the current month.
// Any other weekday resolves to ErrNothingScheduled.
func ResolveWindow(ref time.Time, mode ExecutionMode) (Window, error) {
	ref = truncateDay(ref)
	switch mode {
	case ModeDefault:
		switch ref.AddDate(0, 0, 1).Weekday() {
		case time.Monday:
			return ResolveWindow(ref, ModePreviousMonth)
		case time.Thursday:
			return ResolveWindow(ref, ModeCurrentMonth)
		default:
			return Window{}, ErrNothingScheduled
		}
	case ModePreviousMonth:
		firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{
			From: firstOfMonth.AddDate(0, -1, 0),
			To:   firstOfMonth.AddDate(0, 0, -1),
		}, nil
	case ModeCurrentMonth:
		if ref.Day() == 1 {
			return Window{}, &ConfigurationError{
				Field: "reference_date",
				Value: ref.Format("2006-01-02"),
				Msg:   "current-month window is empty on the first of the month",
			}
		}
		return Window{
			From: time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC),
			To:   ref.AddDate(0, 0, -1),
		}, nil
	default:
		return Window{}, &ConfigurationError{
			Field: "mode",
			Value: string(mode),
			Msg:   "unknown execution mode",
		}
	}
}

// ExplicitWindow parses a caller-supplied from/to pair, yyyy-MM-dd.
func ExplicitWindow(from, to string) (Window, error) {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return Window{}, &ConfigurationError{Field: "from", Value: from, Msg: "want yyyy-MM-dd"}
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return Window{}, &ConfigurationError{Field: "to", Value: to, Msg: "want yyyy-MM-dd"}
	}
	if t.Before(f) {
		return Window{}, &ConfigurationError{Field: "to", Value: to, Msg: "window end precedes start"}
	}
	return Window{From: f, To: t}, nil
}

// TrailingWindow anchors a window at the first of the reference month and
// widens it to cover at least minDays days, so early-month runs still see
// enough history to re-match late-arriving provider events.
func TrailingWindow(ref time.Time, minDays int) Window {
	ref = truncateDay(ref)
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	if floor := ref.AddDate(0, 0, -(minDays - 1)); floor.Before(from) {
		from = floor
	}
	return Window{From: from, To: ref}
}

// ProviderLookback is the flat lookback window applied to provider
// extraction, wide enough to pick up events settled well after the sale.
func ProviderLookback(ref time.Time, days int) Window {
	ref = truncateDay(ref)
	return Window{From: ref.AddDate(0, 0, -days), To: ref}
}

// SalesWindow widens a provider window's lower bound by one day for the
// sales-side extraction, covering sales rung up just before midnight whose
// provider events land on the next business date.
func SalesWindow(w Window) Window {
	return Window{From: w.From.AddDate(0, 0, -1), To: w.To}
}
