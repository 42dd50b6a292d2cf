// Package handler содержит HTTP-обработчики API сервиса начисления баллов за чеки.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/receipt-loyalty-system/internal/middleware"
	"github.com/mmeshcher/receipt-loyalty-system/internal/model"
	"github.com/mmeshcher/receipt-loyalty-system/internal/repository"
)

// maxReceiptImageSize ограничивает размер тела запроса с фотографией чека.
const maxReceiptImageSize = 10 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	SubmitReceipt(ctx context.Context, userID int64, image []byte, mimeType string) (*model.AwardOutcome, error)
	GetBalance(ctx context.Context, userID int64) (*model.Balance, error)
	GetReceiptsByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

// Handler реализует HTTP-обработчики API сервиса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

type submitReceiptResponse struct {
	Accepted      bool   `json:"accepted"`
	PointsAwarded int64  `json:"points_awarded,omitempty"`
	NewBalance    int64  `json:"new_balance,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Message       string `json:"message,omitempty"`
}

// SubmitReceipt принимает фотографию чека в теле запроса и прогоняет её через
// конвейер проверки. Дубликат и временная недоступность различимы по статусу,
// чтобы клиент мог решить, предлагать ли повтор.
func (h *Handler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if !isSupportedImageType(mimeType) {
		http.Error(w, http.StatusText(http.StatusUnsupportedMediaType), http.StatusUnsupportedMediaType)
		return
	}

	defer r.Body.Close()

	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReceiptImageSize))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}
	if len(image) == 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	outcome, err := h.service.SubmitReceipt(r.Context(), userID, image, mimeType)
	if err != nil {
		var rej *model.Rejection
		if errors.As(err, &rej) {
			writeJSON(w, rejectionStatus(rej), submitReceiptResponse{
				Accepted: false,
				Reason:   string(rej.Reason),
				Kind:     rej.Kind,
				Message:  rej.Message,
			})
			return
		}
		h.logger.Error("submit receipt error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, submitReceiptResponse{
		Accepted:      true,
		PointsAwarded: outcome.PointsAwarded,
		NewBalance:    outcome.NewBalance,
	})
}

func isSupportedImageType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

func rejectionStatus(rej *model.Rejection) int {
	switch rej.Reason {
	case model.RejectDuplicate:
		return http.StatusConflict
	case model.RejectTransientUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetBalance возвращает баланс текущего пользователя.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.logger.Error("get balance error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

type receiptResponse struct {
	OrderNumber   string `json:"order_number"`
	OrderDate     string `json:"order_date"`
	OrderTime     string `json:"order_time"`
	PointsAwarded int64  `json:"points_awarded"`
	AcceptedAt    string `json:"accepted_at"`
}

// GetReceipts возвращает принятые чеки текущего пользователя, новые первыми.
func (h *Handler) GetReceipts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	receipts, err := h.service.GetReceiptsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get receipts error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(receipts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]receiptResponse, 0, len(receipts))
	for _, e := range receipts {
		resp = append(resp, receiptResponse{
			OrderNumber:   e.OrderNumber,
			OrderDate:     e.OrderDate,
			OrderTime:     e.OrderTime,
			PointsAwarded: e.PointsAwarded,
			AcceptedAt:    e.AcceptedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
