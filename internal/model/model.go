// Package model содержит доменные сущности сервиса начисления баллов за чеки.
package model

import "time"

// User представляет зарегистрированного пользователя программы лояльности.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// ReceiptFields содержит поля, извлечённые из фотографии чека.
// Значения не проверены: корректность гарантирует только детерминированная валидация.
type ReceiptFields struct {
	OrderNumber string  `json:"orderNumber"`
	OrderTotal  float64 `json:"orderTotal"`
	OrderDate   string  `json:"orderDate"`
	OrderTime   string  `json:"orderTime"`
}

// ValidatedReceipt — поля чека, прошедшие все детерминированные проверки.
// Сумма хранится в копейках, как и везде в хранилище.
type ValidatedReceipt struct {
	OrderNumber string
	TotalCents  int64
	OrderDate   string
	OrderTime   string
}

// LedgerEntry описывает принятый чек: запись о начислении и свидетель для поиска дубликатов.
type LedgerEntry struct {
	OrderNumber   string
	OrderDate     string
	OrderTime     string
	PointsAwarded int64
	AcceptedAt    time.Time
}

// Balance содержит текущий баланс баллов пользователя.
type Balance struct {
	Current int64 `json:"current"`
}

// AwardOutcome — результат успешного прохождения конвейера проверки чека.
type AwardOutcome struct {
	PointsAwarded int64
	NewBalance    int64
}

// RejectReason классифицирует отказ конвейера проверки чека.
type RejectReason string

const (
	// RejectUnclear — чек не удалось надёжно прочитать (отказ модели или расхождение извлечений).
	RejectUnclear RejectReason = "UNCLEAR"
	// RejectInvalidFormat — поля чека не прошли детерминированную проверку.
	RejectInvalidFormat RejectReason = "INVALID_FORMAT"
	// RejectDuplicate — чек уже был принят ранее.
	RejectDuplicate RejectReason = "DUPLICATE"
	// RejectTransientUnavailable — временная ошибка хранилища, повторная отправка допустима.
	RejectTransientUnavailable RejectReason = "TRANSIENT_UNAVAILABLE"
)

// Rejection — типизированный отказ, который оркестратор возвращает вызывающей стороне.
type Rejection struct {
	Reason  RejectReason
	Kind    string // уточнение для INVALID_FORMAT
	Message string
}

// Error реализует интерфейс error.
func (r *Rejection) Error() string {
	if r.Kind != "" {
		return string(r.Reason) + " (" + r.Kind + "): " + r.Message
	}
	return string(r.Reason) + ": " + r.Message
}

// Retryable сообщает, имеет ли смысл повторная отправка того же чека.
func (r *Rejection) Retryable() bool {
	return r.Reason == RejectTransientUnavailable
}
