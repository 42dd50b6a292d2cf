// Package consensus реализует согласование двух независимых извлечений полей чека.
//
// Одиночному ответу генеративной модели нельзя доверять необратимое начисление
// баллов: перед тем как пропустить чек дальше, два извлечения по одному и тому
// же изображению должны совпасть по каждому полю.
package consensus

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
	"github.com/mmeshcher/receipt-loyalty-system/internal/vision"
)

// ErrMismatch означает, что два извлечения разошлись хотя бы в одном поле.
// Это признак нечитаемого снимка, а не повод для повтора.
var ErrMismatch = errors.New("extractions disagree")

// Extractor описывает одно извлечение полей чека из изображения.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*model.ReceiptFields, error)
}

// Validator выполняет два конкурентных извлечения и сравнивает результаты.
type Validator struct {
	extractor Extractor
}

// NewValidator создаёт валидатор поверх переданного извлекателя.
func NewValidator(extractor Extractor) *Validator {
	return &Validator{extractor: extractor}
}

// Validate запускает два независимых извлечения, дожидается обоих и требует
// точного совпадения всех полей. При ошибках обеих сторон предпочитает
// семантический отказ модели перед таймаутом или ошибкой сервиса.
func (v *Validator) Validate(ctx context.Context, image []byte, mimeType string) (*model.ReceiptFields, error) {
	var (
		first, second       *model.ReceiptFields
		firstErr, secondErr error
	)

	// Группа без контекста: отмена одной стороны не должна превращать
	// результат другой в ложный таймаут, решение принимается по обоим.
	var g errgroup.Group
	g.Go(func() error {
		first, firstErr = v.extractor.Extract(ctx, image, mimeType)
		return nil
	})
	g.Go(func() error {
		second, secondErr = v.extractor.Extract(ctx, image, mimeType)
		return nil
	})
	_ = g.Wait()

	if firstErr != nil || secondErr != nil {
		return nil, pickUpstreamError(firstErr, secondErr)
	}

	if *first != *second {
		return nil, ErrMismatch
	}

	return first, nil
}

func pickUpstreamError(firstErr, secondErr error) error {
	if firstErr == nil {
		return secondErr
	}
	if secondErr == nil {
		return firstErr
	}
	if isTransient(firstErr) && !isTransient(secondErr) {
		return secondErr
	}
	return firstErr
}

func isTransient(err error) bool {
	return errors.Is(err, vision.ErrTimeout) || errors.Is(err, vision.ErrServiceError)
}
