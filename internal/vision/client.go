// Package vision предоставляет клиент извлечения полей чека через визуальную модель.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
)

// Семантические отказы модели: фотографию нужно переснять, повтор не поможет.
var (
	ErrNotThisVendor      = errors.New("receipt is not from this vendor")
	ErrObstructed         = errors.New("receipt fields are obstructed")
	ErrIllegible          = errors.New("receipt is illegible")
	ErrNoValidOrderNumber = errors.New("no valid order number on receipt")
)

// Технические ошибки извлечения.
var (
	// ErrMalformed — в ответе модели не удалось найти ожидаемый JSON-объект.
	ErrMalformed = errors.New("malformed model response")
	// ErrTimeout — запрос к модели не уложился в таймаут.
	ErrTimeout = errors.New("vision model request timed out")
	// ErrServiceError — сервис модели вернул ошибку.
	ErrServiceError = errors.New("vision model service error")
)

const defaultRequestTimeout = 30 * time.Second

// Generator абстрагирует один вызов визуальной модели: промпт плюс
// изображение на входе, свободный текст на выходе.
type Generator interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Client выполняет одно извлечение полей чека за вызов. Состояния не хранит,
// политика повторов сюда намеренно не входит.
type Client struct {
	gen     Generator
	timeout time.Duration
}

// NewClient создаёт клиент извлечения поверх переданного генератора.
func NewClient(gen Generator, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		gen:     gen,
		timeout: timeout,
	}
}

// Extract отправляет изображение чека модели и разбирает её ответ.
// Возвращает либо полный набор полей, либо одну из ошибок пакета:
// частично извлечённых полей не бывает.
func (c *Client) Extract(ctx context.Context, image []byte, mimeType string) (*model.ReceiptFields, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.gen.Generate(ctx, extractionPrompt, image, mimeType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %s", ErrServiceError, err)
	}

	return parseResponse(raw)
}

// extractorResponse — форма JSON-объекта, который модель обязана вернуть.
// Указатели отличают null от отсутствующего значения.
type extractorResponse struct {
	OrderNumber *string  `json:"orderNumber"`
	OrderTotal  *float64 `json:"orderTotal"`
	OrderDate   *string  `json:"orderDate"`
	OrderTime   *string  `json:"orderTime"`
	Error       *string  `json:"error"`
}

func parseResponse(raw string) (*model.ReceiptFields, error) {
	payload, ok := locateJSONObject(raw)
	if !ok {
		return nil, ErrMalformed
	}

	var resp extractorResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	if resp.Error != nil {
		return nil, semanticError(*resp.Error)
	}

	// Поля либо извлечены все, либо модель не смогла прочитать чек уверенно.
	if resp.OrderNumber == nil || resp.OrderTotal == nil || resp.OrderDate == nil || resp.OrderTime == nil {
		return nil, ErrIllegible
	}

	return &model.ReceiptFields{
		OrderNumber: strings.TrimSpace(*resp.OrderNumber),
		OrderTotal:  *resp.OrderTotal,
		OrderDate:   strings.TrimSpace(*resp.OrderDate),
		OrderTime:   strings.TrimSpace(*resp.OrderTime),
	}, nil
}

func semanticError(code string) error {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "not_this_vendor":
		return ErrNotThisVendor
	case "obstructed":
		return ErrObstructed
	case "illegible":
		return ErrIllegible
	case "no_valid_order_number":
		return ErrNoValidOrderNumber
	default:
		return fmt.Errorf("%w: unknown error code %q", ErrMalformed, code)
	}
}

// locateJSONObject вырезает JSON-объект из свободного текста ответа: модель
// может обернуть его в Markdown-ограждения или сопроводить комментарием.
func locateJSONObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}

	return s[start : end+1], true
}
