// Package validation содержит детерминированные проверки полей чека.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
)

// Kind идентифицирует проверку, которую не прошли поля чека.
type Kind string

const (
	KindOrderNumberFormat Kind = "ORDER_NUMBER_FORMAT"
	KindOrderNumberRange  Kind = "ORDER_NUMBER_RANGE"
	KindDateFormat        Kind = "DATE_FORMAT"
	KindTimeFormat        Kind = "TIME_FORMAT"
	KindTimeRange         Kind = "TIME_RANGE"
	KindTotalRange        Kind = "TOTAL_RANGE"
	KindTooOld            Kind = "TOO_OLD"
)

// Error описывает непройденную проверку полей чека.
type Error struct {
	Kind    Kind
	Message string
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

const (
	// Верхняя граница номера заказа здесь жёстче, чем в инструкции для модели (400):
	// детерминированная проверка — вторая, независимая линия защиты.
	maxOrderNumber = 200

	minTotalCents = 100
	maxTotalCents = 50000

	maxReceiptAgeDays = 30
)

var (
	dateRe = regexp.MustCompile(`^\d{2}/\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Validate применяет проверки к извлечённым полям чека строго по порядку
// и останавливается на первой ошибке, чтобы сообщение было детерминированным.
// Побочных эффектов нет: момент времени передаётся параметром.
func Validate(fields model.ReceiptFields, now time.Time) (*model.ValidatedReceipt, error) {
	number := strings.TrimSpace(fields.OrderNumber)
	if number == "" || len(number) > 3 || !isDigits(number) {
		return nil, &Error{Kind: KindOrderNumberFormat, Message: fmt.Sprintf("order number %q must be 1 to 3 digits", fields.OrderNumber)}
	}

	n, err := strconv.Atoi(number)
	if err != nil || n < 1 || n > maxOrderNumber {
		return nil, &Error{Kind: KindOrderNumberRange, Message: fmt.Sprintf("order number %d must be between 1 and %d", n, maxOrderNumber)}
	}

	date := strings.TrimSpace(fields.OrderDate)
	if !dateRe.MatchString(date) {
		return nil, &Error{Kind: KindDateFormat, Message: fmt.Sprintf("order date %q must match MM/DD", fields.OrderDate)}
	}
	month, day, err := parseMonthDay(date)
	if err != nil {
		return nil, &Error{Kind: KindDateFormat, Message: fmt.Sprintf("order date %q is not a calendar date", fields.OrderDate)}
	}

	timeStr := strings.TrimSpace(fields.OrderTime)
	if !timeRe.MatchString(timeStr) {
		return nil, &Error{Kind: KindTimeFormat, Message: fmt.Sprintf("order time %q must match HH:MM", fields.OrderTime)}
	}

	hour, _ := strconv.Atoi(timeStr[:2])
	minute, _ := strconv.Atoi(timeStr[3:])
	if hour > 23 || minute > 59 {
		return nil, &Error{Kind: KindTimeRange, Message: fmt.Sprintf("order time %q is out of range", fields.OrderTime)}
	}

	totalCents := int64(math.Round(fields.OrderTotal * 100))
	if totalCents < minTotalCents || totalCents > maxTotalCents {
		return nil, &Error{Kind: KindTotalRange, Message: fmt.Sprintf("order total %.2f must be between 1.00 and 500.00", fields.OrderTotal)}
	}

	if age := receiptAgeDays(month, day, now); age > maxReceiptAgeDays {
		return nil, &Error{Kind: KindTooOld, Message: fmt.Sprintf("receipt is %d days old, limit is %d", age, maxReceiptAgeDays)}
	}

	return &model.ValidatedReceipt{
		OrderNumber: number,
		TotalCents:  totalCents,
		OrderDate:   date,
		OrderTime:   timeStr,
	}, nil
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// parseMonthDay разбирает строку MM/DD и отвергает несуществующие календарные даты.
func parseMonthDay(s string) (time.Month, int, error) {
	parsed, err := time.Parse("01/02", s)
	if err != nil {
		return 0, 0, err
	}
	return parsed.Month(), parsed.Day(), nil
}

// receiptAgeDays восстанавливает полную дату чека: месяц и день дополняются
// текущим годом, а если полученная дата оказывается в будущем, она трактуется
// как прошлогодняя. Возвращает модуль расстояния до now в днях.
func receiptAgeDays(month time.Month, day int, now time.Time) int {
	year, _, _ := now.UTC().Date()

	candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if candidate.After(now.UTC()) {
		candidate = time.Date(year-1, month, day, 0, 0, 0, 0, time.UTC)
	}

	nowDay := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)

	diff := nowDay.Sub(candidate)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
