package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
)

func fieldsOK() model.ReceiptFields {
	return model.ReceiptFields{
		OrderNumber: "042",
		OrderTotal:  23.45,
		OrderDate:   "06/15",
		OrderTime:   "12:30",
	}
}

// now соответствует сценарию из приёмочных проверок: 20 июня, чек от 15 июня.
var testNow = time.Date(2025, time.June, 20, 15, 0, 0, 0, time.UTC)

func TestValidate_HappyPath(t *testing.T) {
	got, err := Validate(fieldsOK(), testNow)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got.OrderNumber != "042" {
		t.Fatalf("OrderNumber = %q, want %q", got.OrderNumber, "042")
	}
	if got.TotalCents != 2345 {
		t.Fatalf("TotalCents = %d, want 2345", got.TotalCents)
	}
	if got.OrderDate != "06/15" || got.OrderTime != "12:30" {
		t.Fatalf("unexpected receipt: %+v", got)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *model.ReceiptFields)
		now    time.Time
		kind   Kind
	}{
		{
			name:   "order number empty",
			mutate: func(f *model.ReceiptFields) { f.OrderNumber = "" },
			kind:   KindOrderNumberFormat,
		},
		{
			name:   "order number four digits",
			mutate: func(f *model.ReceiptFields) { f.OrderNumber = "1234" },
			kind:   KindOrderNumberFormat,
		},
		{
			name:   "order number not numeric",
			mutate: func(f *model.ReceiptFields) { f.OrderNumber = "4a2" },
			kind:   KindOrderNumberFormat,
		},
		{
			name:   "order number zero",
			mutate: func(f *model.ReceiptFields) { f.OrderNumber = "000" },
			kind:   KindOrderNumberRange,
		},
		{
			// 250 проходит по инструкции для модели (<=400), но не по жёсткой границе кода.
			name:   "order number over deterministic cap",
			mutate: func(f *model.ReceiptFields) { f.OrderNumber = "250" },
			kind:   KindOrderNumberRange,
		},
		{
			name:   "order number at cap is fine",
			mutate: func(f *model.ReceiptFields) { f.OrderNumber = "200" },
		},
		{
			name:   "date without leading zero",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "6/15" },
			kind:   KindDateFormat,
		},
		{
			name:   "date with year",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "06/15/2025" },
			kind:   KindDateFormat,
		},
		{
			name:   "date not a calendar date",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "02/30" },
			kind:   KindDateFormat,
		},
		{
			name:   "time without colon",
			mutate: func(f *model.ReceiptFields) { f.OrderTime = "1230" },
			kind:   KindTimeFormat,
		},
		{
			name:   "hour out of range",
			mutate: func(f *model.ReceiptFields) { f.OrderTime = "24:00" },
			kind:   KindTimeRange,
		},
		{
			name:   "minute out of range",
			mutate: func(f *model.ReceiptFields) { f.OrderTime = "12:60" },
			kind:   KindTimeRange,
		},
		{
			name:   "midnight is valid",
			mutate: func(f *model.ReceiptFields) { f.OrderTime = "00:00" },
		},
		{
			name:   "total below minimum",
			mutate: func(f *model.ReceiptFields) { f.OrderTotal = 0.99 },
			kind:   KindTotalRange,
		},
		{
			name:   "total above maximum",
			mutate: func(f *model.ReceiptFields) { f.OrderTotal = 500.01 },
			kind:   KindTotalRange,
		},
		{
			name:   "total at lower bound",
			mutate: func(f *model.ReceiptFields) { f.OrderTotal = 1.00 },
		},
		{
			name:   "total at upper bound",
			mutate: func(f *model.ReceiptFields) { f.OrderTotal = 500.00 },
		},
		{
			// 01/01 против 15 марта того же года — далеко за пределами 30 дней.
			name:   "stale receipt",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "01/01" },
			now:    time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC),
			kind:   KindTooOld,
		},
		{
			name:   "exactly 30 days old is fine",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "05/21" },
		},
		{
			name:   "31 days old",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "05/20" },
			kind:   KindTooOld,
		},
		{
			// Чек от 25 декабря, "сейчас" — 10 января: дата трактуется как прошлогодняя.
			name:   "year boundary rollover",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "12/25" },
			now:    time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "year boundary rollover too old",
			mutate: func(f *model.ReceiptFields) { f.OrderDate = "12/01" },
			now:    time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC),
			kind:   KindTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOK()
			tt.mutate(&fields)

			now := tt.now
			if now.IsZero() {
				now = testNow
			}

			got, err := Validate(fields, now)

			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Validate error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate(%+v) = %+v, want error kind %s", fields, got, tt.kind)
			}
			var vErr *Error
			if !errors.As(err, &vErr) {
				t.Fatalf("error %v is not *validation.Error", err)
			}
			if vErr.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", vErr.Kind, tt.kind)
			}
		})
	}
}

func TestValidate_ShortCircuitOrder(t *testing.T) {
	// Несколько проверок нарушены сразу: должна сработать первая по порядку.
	fields := model.ReceiptFields{
		OrderNumber: "9999",
		OrderTotal:  0,
		OrderDate:   "bad",
		OrderTime:   "bad",
	}

	_, err := Validate(fields, testNow)

	var vErr *Error
	if !errors.As(err, &vErr) {
		t.Fatalf("error %v is not *validation.Error", err)
	}
	if vErr.Kind != KindOrderNumberFormat {
		t.Fatalf("kind = %s, want %s", vErr.Kind, KindOrderNumberFormat)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	fields := fieldsOK()
	fields.OrderNumber = "250"

	first, firstErr := Validate(fields, testNow)
	second, secondErr := Validate(fields, testNow)

	if first != nil || second != nil {
		t.Fatalf("expected rejection on both runs")
	}
	if firstErr.Error() != secondErr.Error() {
		t.Fatalf("rejections differ: %v vs %v", firstErr, secondErr)
	}
}
